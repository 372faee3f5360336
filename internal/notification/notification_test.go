package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varoOP/malmirror/internal/domain"
)

func TestDiscordService_SendSuccess(t *testing.T) {
	var got discordWebhook
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	svc := NewService(zerolog.Nop(), srv.URL)
	err := svc.SendSuccess(context.Background(), domain.SyncReport{
		RunID:     "run-1",
		Kind:      "anime",
		Total:     3,
		LastIndex: 2,
		Processed: 3,
		Created:   2,
		Failed:    1,
		Duration:  90 * time.Second,
	})
	require.NoError(t, err)

	require.Len(t, got.Embeds, 1)
	embed := got.Embeds[0]
	assert.Contains(t, embed.Description, "run-1")
	assert.Equal(t, 0xffa500, embed.Color)

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "0 to 2 of 3", fields["Range"])
	assert.Equal(t, "2", fields["Created"])
	assert.Equal(t, "1", fields["Failed"])
	assert.Equal(t, "1m30s", fields["Duration"])
}

func TestDiscordService_SendError(t *testing.T) {
	var got discordWebhook
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	t.Cleanup(srv.Close)

	require.NoError(t, NewDiscordService(zerolog.Nop(), srv.URL).SendError(context.Background(), errors.New("id list unreachable")))
	require.Len(t, got.Embeds, 1)
	assert.Contains(t, got.Embeds[0].Description, "id list unreachable")
	assert.Equal(t, 0xff0000, got.Embeds[0].Color)
}

func TestDiscordService_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	err := NewDiscordService(zerolog.Nop(), srv.URL).SendSuccess(context.Background(), domain.SyncReport{})
	assert.Error(t, err)
}

func TestService_NoWebhookIsNoop(t *testing.T) {
	svc := NewService(zerolog.Nop(), "")
	assert.NoError(t, svc.SendSuccess(context.Background(), domain.SyncReport{}))
	assert.NoError(t, svc.SendError(context.Background(), errors.New("x")))
}

func TestService_EmptyRunIsNotSent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	svc := NewService(zerolog.Nop(), srv.URL)
	require.NoError(t, svc.SendSuccess(context.Background(), domain.SyncReport{RunID: "run-2", StartIndex: 40}))
	assert.Equal(t, 0, calls)

	require.NoError(t, svc.SendSuccess(context.Background(), domain.SyncReport{RunID: "run-3", Processed: 1, Skipped: 1}))
	assert.Equal(t, 1, calls)
}

func TestService_WrapsDeliveryErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	svc := NewService(zerolog.Nop(), srv.URL)
	err := svc.SendSuccess(context.Background(), domain.SyncReport{RunID: "run-4", Processed: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-4")

	assert.Error(t, svc.SendError(context.Background(), errors.New("boom")))
}
