package notification

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
)

// Service fans sync run results out to the configured channels. Runs that
// attempted no items (e.g. a resume past the end of the id list) are only
// logged.
type Service struct {
	log     zerolog.Logger
	discord *DiscordService
}

func NewService(log zerolog.Logger, webhookURL string) domain.NotificationService {
	s := &Service{log: log.With().Str("module", "notification").Logger()}
	if webhookURL != "" {
		s.discord = NewDiscordService(log, webhookURL)
	}
	return s
}

func (s *Service) SendSuccess(ctx context.Context, report domain.SyncReport) error {
	log := s.log.With().Str("run", report.RunID).Str("kind", report.Kind).Logger()

	if report.Processed == 0 {
		log.Debug().Int("start", report.StartIndex).Msg("nothing processed, skipping notification")
		return nil
	}

	if s.discord == nil {
		return nil
	}

	if err := s.discord.SendSuccess(ctx, report); err != nil {
		return errors.Wrapf(err, "could not notify run %s", report.RunID)
	}

	log.Debug().Msg("run notification sent")
	return nil
}

func (s *Service) SendError(ctx context.Context, err error) error {
	if s.discord == nil {
		return nil
	}

	if sendErr := s.discord.SendError(ctx, err); sendErr != nil {
		return errors.Wrap(sendErr, "could not send failure notification")
	}
	return nil
}
