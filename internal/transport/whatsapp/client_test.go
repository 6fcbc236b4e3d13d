package whatsapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		Token:         "test-token",
		PhoneNumberID: "12345",
		Timeout:       2 * time.Second,
		MaxRetries:    3,
		BackoffFactor: 0.001,
	}
}

func TestRetryBoundOnConnectionErrors(t *testing.T) {
	var attempts atomic.Int32
	// Count the attempt, then kill the connection so the client sees a
	// transport error every time.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	err := client.SendText(context.Background(), "+15551234567", "hello", false)

	require.Error(t, err)
	// max_retries=3 means 1 initial attempt + 3 retries.
	assert.Equal(t, int32(4), attempts.Load())
}

func TestTerminalHTTPErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad recipient"}}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	err := client.SendText(context.Background(), "+15551234567", "hello", false)

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad recipient")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestSendTextRequestShape(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	require.NoError(t, client.SendText(context.Background(), "+15551234567", "hi there", false))

	assert.Equal(t, "/12345/messages", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Contains(t, gotBody, `"messaging_product":"whatsapp"`)
	assert.Contains(t, gotBody, `"to":"+15551234567"`)
	assert.Contains(t, gotBody, `"body":"hi there"`)
}

func TestInteractiveLimitsValidatedBeforeSend(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	ctx := context.Background()

	err := client.SendReplyButtons(ctx, "+1", "pick", []Button{})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = client.SendReplyButtons(ctx, "+1", "pick", []Button{
		{ID: "a", Title: "this button title is far too long"},
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	tooManyRows := make([]ListRow, 11)
	for i := range tooManyRows {
		tooManyRows[i] = ListRow{ID: "r", Title: "row"}
	}
	err = client.SendList(ctx, "+1", ListMessage{
		Body:       "choose",
		ButtonText: "open",
		Sections:   []ListSection{{Rows: tooManyRows}},
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = client.SendList(ctx, "+1", ListMessage{
		Body:       strings.Repeat("x", 1025),
		ButtonText: "open",
		Sections:   []ListSection{{Rows: []ListRow{{ID: "r", Title: "row"}}}},
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	// Nothing reached the network.
	assert.Equal(t, int32(0), attempts.Load())

	// A valid payload goes through.
	err = client.SendReplyButtons(ctx, "+1", "pick", []Button{{ID: "yes", Title: "Yes"}})
	require.NoError(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}
