// goalbotctl is the operator CLI: inspect users and goals, export rating
// history and inject test messages through a running instance's webhook.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/goalbot/goalbot/internal/data"
	"github.com/goalbot/goalbot/internal/export"
)

var (
	dbPath     string
	webhookURL string
	clientType string
)

func main() {
	root := &cobra.Command{
		Use:           "goalbotctl",
		Short:         "Operator tooling for the goalbot service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	homeDir, _ := os.UserHomeDir()
	root.PersistentFlags().StringVar(&dbPath, "db", filepath.Join(homeDir, ".goalbot", "goalbot.db"), "path to the sqlite database")

	sendCmd := &cobra.Command{
		Use:   "send <phone> <text>",
		Short: "Inject a chat message via the webhook and print the reply",
		Args:  cobra.ExactArgs(2),
		RunE:  runSend,
	}
	sendCmd.Flags().StringVar(&webhookURL, "url", "http://localhost:8080/webhook", "webhook endpoint of a running instance")
	sendCmd.Flags().StringVar(&clientType, "client-type", "emulator", "client type to send as")

	root.AddCommand(
		&cobra.Command{
			Use:   "users",
			Short: "List all users",
			Args:  cobra.NoArgs,
			RunE:  runUsers,
		},
		&cobra.Command{
			Use:   "goals <phone>",
			Short: "List a user's goals",
			Args:  cobra.ExactArgs(1),
			RunE:  runGoals,
		},
		&cobra.Command{
			Use:   "export <phone>",
			Short: "Export a user's rating history as CSV on stdout",
			Args:  cobra.ExactArgs(1),
			RunE:  runExport,
		},
		sendCmd,
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openStore() (*data.Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database not found at %s", dbPath)
	}
	return data.Open(dbPath)
}

func runUsers(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.Users.ListAll(cmd.Context())
	if err != nil {
		return err
	}
	for _, u := range users {
		state := "-"
		if u.State != nil {
			state = string(u.State.Name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Phone, u.Timezone, u.ClientType, state)
	}
	return nil
}

func runGoals(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := store.Users.GetByPhone(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user with phone %s", args[0])
	}
	goals, err := store.Goals.ListByUser(cmd.Context(), user.ID)
	if err != nil {
		return err
	}
	for i, g := range goals {
		reminder := "-"
		if g.ReminderTime != nil {
			reminder = *g.ReminderTime
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s %s\treminder=%s\n", i+1, g.Emoji, g.Description, reminder)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := store.Users.GetByPhone(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user with phone %s", args[0])
	}
	goals, err := store.Goals.ListByUser(cmd.Context(), user.ID)
	if err != nil {
		return err
	}
	ratings, err := store.Ratings.ListByUser(cmd.Context(), user.ID)
	if err != nil {
		return err
	}
	return export.WriteCSV(cmd.OutOrStdout(), goals, ratings)
}

func runSend(cmd *cobra.Command, args []string) error {
	payload, err := json.Marshal(map[string]any{
		"sender":      args[0],
		"msg_type":    "chat",
		"raw_msg":     args[1],
		"client_type": clientType,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, body)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return nil
}
