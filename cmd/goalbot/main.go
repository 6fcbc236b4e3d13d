package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/goalbot/goalbot/internal/biz/domain"
	"github.com/goalbot/goalbot/internal/biz/repo"
	"github.com/goalbot/goalbot/internal/bus"
	"github.com/goalbot/goalbot/internal/conf"
	"github.com/goalbot/goalbot/internal/data"
	"github.com/goalbot/goalbot/internal/dispatch"
	"github.com/goalbot/goalbot/internal/platform/logger"
	"github.com/goalbot/goalbot/internal/processor"
	"github.com/goalbot/goalbot/internal/server"
	"github.com/goalbot/goalbot/internal/service"
	"github.com/goalbot/goalbot/internal/timezone"
	"github.com/goalbot/goalbot/internal/transport/emulator"
	"github.com/goalbot/goalbot/internal/transport/legacy"
	"github.com/goalbot/goalbot/internal/transport/whatsapp"
)

// disabledAudio answers audio messages when no transcription backend is
// configured.
type disabledAudio struct{}

func (disabledAudio) Process(_ context.Context, _ *domain.User, _ *domain.Message) (string, map[string]any, error) {
	return "Audio transcription is not configured on this server, sorry! Please type your message instead.", nil, nil
}

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("goalbot", cfg.Debug)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	store, err := data.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open record store")
	}
	defer store.Close()

	b := bus.New()
	broadcaster := emulator.NewBroadcaster()

	transports := map[domain.ClientType]repo.Transport{
		domain.ClientEmulator: broadcaster,
	}
	if cfg.WhatsApp.Enabled() {
		transports[domain.ClientWhatsAppBusiness] = whatsapp.NewClient(whatsapp.Config{
			BaseURL:       cfg.WhatsApp.BaseURL,
			Token:         cfg.WhatsApp.Token,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
			Timeout:       cfg.WhatsApp.Timeout(),
			MaxRetries:    cfg.WhatsApp.MaxRetries,
			BackoffFactor: cfg.WhatsApp.BackoffFactor,
		})
		log.Info().Msg("whatsapp business transport enabled")
	}
	if cfg.LegacyAPIURL != "" {
		transports[domain.ClientWhatsAppWeb] = legacy.NewClient(cfg.LegacyAPIURL)
		log.Info().Str("url", cfg.LegacyAPIURL).Msg("legacy bridge transport enabled")
	}

	var audio repo.AudioProcessor = disabledAudio{}
	if cfg.OpenAIKey != "" {
		audio = processor.NewAudioProcessor(cfg.OpenAIKey, log)
	}

	dispatcher := dispatch.New(store.Users, store.Goals, store.Ratings, log)
	router := service.NewRouter(b, store.Users, dispatcher, audio, processor.NewVCardProcessor(), timezone.NewPrefixResolver(), log)
	sender := service.NewSender(b, transports, log)
	scheduler := service.NewReminderScheduler(b, store.Users, store.Goals, store.Ratings, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router.Start(ctx)
	sender.Start(ctx)
	scheduler.Start(ctx)

	srv := server.New(fmt.Sprintf(":%d", cfg.HTTPPort), b, broadcaster, cfg.SubmitTimeout(), log)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	scheduler.Stop()
	b.Stop()
	router.Wait()
	sender.Wait()
	log.Info().Msg("shutdown complete")
}
