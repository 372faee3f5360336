package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
)

// DiscordService implements NotificationService for Discord webhooks
type DiscordService struct {
	log        zerolog.Logger
	webhookURL string
	httpClient *http.Client
}

// NewDiscordService creates a new Discord notification service
func NewDiscordService(log zerolog.Logger, webhookURL string) *DiscordService {
	return &DiscordService{
		log:        log.With().Str("module", "notification").Str("type", "discord").Logger(),
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendSuccess posts the counters of a finished sync run
func (s *DiscordService) SendSuccess(ctx context.Context, report domain.SyncReport) error {
	if s.webhookURL == "" {
		return nil // No webhook configured, skip silently
	}

	color := 0x00ff00 // Green
	if report.Failed > 0 {
		color = 0xffa500 // Orange
	}

	embed := discordEmbed{
		Title:       "malmirror sync completed",
		Description: fmt.Sprintf("Run `%s` over %s ids", report.RunID, report.Kind),
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []discordField{
			{
				Name:   "Range",
				Value:  fmt.Sprintf("%d to %d of %d", report.StartIndex, report.LastIndex, report.Total),
				Inline: false,
			},
			{
				Name:   "Processed",
				Value:  fmt.Sprintf("%d", report.Processed),
				Inline: true,
			},
			{
				Name:   "Created",
				Value:  fmt.Sprintf("%d", report.Created),
				Inline: true,
			},
			{
				Name:   "Updated",
				Value:  fmt.Sprintf("%d", report.Updated),
				Inline: true,
			},
			{
				Name:   "Skipped",
				Value:  fmt.Sprintf("%d", report.Skipped),
				Inline: true,
			},
			{
				Name:   "Failed",
				Value:  fmt.Sprintf("%d", report.Failed),
				Inline: true,
			},
			{
				Name:   "Duration",
				Value:  report.Duration.Round(time.Second).String(),
				Inline: true,
			},
		},
	}

	payload := discordWebhook{
		Embeds: []discordEmbed{embed},
	}

	return s.sendWebhook(ctx, payload)
}

// SendError sends an error notification with error details
func (s *DiscordService) SendError(ctx context.Context, err error) error {
	if s.webhookURL == "" {
		return nil // No webhook configured, skip silently
	}

	embed := discordEmbed{
		Title:       "malmirror sync failed",
		Description: fmt.Sprintf("Sync aborted with error:\n```%s```", err.Error()),
		Color:       0xff0000, // Red
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	payload := discordWebhook{
		Embeds: []discordEmbed{embed},
	}

	return s.sendWebhook(ctx, payload)
}

// sendWebhook sends a webhook payload to Discord
func (s *DiscordService) sendWebhook(ctx context.Context, payload discordWebhook) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return errors.Wrap(err, "failed to create webhook request")
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send webhook request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	s.log.Debug().Msg("Discord notification sent successfully")
	return nil
}

// discordWebhook represents a Discord webhook payload
type discordWebhook struct {
	Embeds []discordEmbed `json:"embeds"`
}

// discordEmbed represents a Discord embed
type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
}

// discordField represents a Discord embed field
type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

