package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
	"github.com/varoOP/malmirror/internal/metrics"
)

const DefaultKind = "anime"

// Pipeline walks an id list one item at a time. For every id it decides
// between skip, create and update, writes a checkpoint and keeps a minimum
// spacing between item starts. A failing item never stops the run.
type Pipeline struct {
	log      zerolog.Logger
	service  domain.AnimeService
	fetcher  domain.AnimeFetcher
	progress domain.ProgressStore
	metrics  *metrics.Metrics

	minSpacing time.Duration
	maxRetries int
	retryBase  time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPipeline(log zerolog.Logger, service domain.AnimeService, fetcher domain.AnimeFetcher, progress domain.ProgressStore, cfg domain.SyncConfig, m *metrics.Metrics) *Pipeline {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Pipeline{
		log:        log.With().Str("module", "pipeline").Logger(),
		service:    service,
		fetcher:    fetcher,
		progress:   progress,
		metrics:    m,
		minSpacing: cfg.MinSpacing,
		maxRetries: maxRetries,
		retryBase:  cfg.RetryBaseDelay,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// WithClock replaces the clock used to measure item processing time
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// WithSleep replaces the function used for spacing and retry backoff
func (p *Pipeline) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Pipeline {
	p.sleep = sleep
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// startIndex applies the resume rule: never go back before the item after
// the saved checkpoint.
func (p *Pipeline) startIndex(ctx context.Context, opts domain.SyncOptions) int {
	start := opts.FromIndex
	if start < 0 {
		start = 0
	}

	if !opts.Resume {
		return start
	}

	saved, ok := p.progress.Load(ctx, opts.Kind)
	if !ok {
		p.log.Info().Str("kind", opts.Kind).Msg("no checkpoint found, resume has no effect")
		return start
	}

	if saved.LastIndex+1 > start {
		start = saved.LastIndex + 1
	}

	p.log.Info().Str("kind", opts.Kind).Int("checkpoint", saved.LastIndex).Time("saved", saved.UpdatedAt).Int("start", start).Msg("resuming")
	return start
}

// Run processes ids according to opts and returns the run report. It returns
// an error only when ctx is cancelled or the cache backend is misconfigured,
// in which case the report covers the items handled so far.
func (p *Pipeline) Run(ctx context.Context, ids []int, opts domain.SyncOptions) (domain.SyncReport, error) {
	if opts.Kind == "" {
		opts.Kind = DefaultKind
	}

	began := p.now()
	start := p.startIndex(ctx, opts)

	end := len(ids)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	report := domain.SyncReport{
		RunID:      uuid.NewString(),
		Kind:       opts.Kind,
		Total:      len(ids),
		StartIndex: start,
		LastIndex:  start - 1,
	}

	log := p.log.With().Str("run", report.RunID).Str("kind", opts.Kind).Logger()
	log.Info().Int("start", start).Int("end", end).Int("total", len(ids)).Bool("force", opts.ForceUpdate).Msg("starting sync")

	var runErr error
	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		itemStart := p.now()

		outcome, err := p.step(ctx, log, opts, i, ids[i])
		if err != nil {
			log.Error().Err(err).Int("index", i).Msg("aborting sync")
			runErr = err
			break
		}
		report.Record(outcome)
		report.LastIndex = i
		p.metrics.SyncItem(opts.Kind, outcome)

		if i == end-1 {
			break
		}

		if wait := p.minSpacing - p.now().Sub(itemStart); wait > 0 {
			if err := p.sleep(ctx, wait); err != nil {
				runErr = err
				break
			}
		}
	}

	report.Duration = p.now().Sub(began)
	p.metrics.SyncRun(report, runErr)

	log.Info().
		Int("processed", report.Processed).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("lastIndex", report.LastIndex).
		Dur("duration", report.Duration).
		Msg("sync finished")

	return report, runErr
}

// step handles one id. The checkpoint is written on every exit path,
// including a panic inside process, except when a configuration error is
// returned: then the item was never attempted and must be retried on resume.
func (p *Pipeline) step(ctx context.Context, log zerolog.Logger, opts domain.SyncOptions, index, malID int) (outcome domain.ItemOutcome, fatal error) {
	log = log.With().Int("index", index).Int("mal_id", malID).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("panic", fmt.Sprint(r)).Msg("item panicked")
			outcome = domain.OutcomeFailed
		}

		if fatal != nil {
			return
		}

		if err := p.progress.Save(ctx, opts.Kind, index); err != nil {
			log.Debug().Err(err).Msg("could not write checkpoint")
		}
	}()

	outcome, err := p.process(ctx, log, malID, opts.ForceUpdate)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedCacheBackend) {
			return outcome, err
		}
		log.Warn().Err(err).Msg("item failed")
		return domain.OutcomeFailed, nil
	}

	log.Debug().Str("outcome", string(outcome)).Msg("item done")
	return outcome, nil
}

func (p *Pipeline) process(ctx context.Context, log zerolog.Logger, malID int, force bool) (domain.ItemOutcome, error) {
	exists := true
	if _, err := p.service.FindByID(ctx, malID); err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return domain.OutcomeFailed, errors.Wrap(err, "existence check")
		}
		exists = false
	}

	if exists && !force {
		return domain.OutcomeSkipped, nil
	}

	anime, err := p.fetch(ctx, log, malID)
	if err != nil {
		return domain.OutcomeFailed, err
	}

	if exists {
		if _, err := p.service.Update(ctx, malID, anime); err != nil {
			return domain.OutcomeFailed, errors.Wrap(err, "update")
		}
		return domain.OutcomeUpdated, nil
	}

	if _, err := p.service.Create(ctx, anime); err != nil {
		return domain.OutcomeFailed, errors.Wrap(err, "create")
	}
	return domain.OutcomeCreated, nil
}

// fetch calls upstream up to maxRetries times. The wait before attempt n+1
// is retryBase*n.
func (p *Pipeline) fetch(ctx context.Context, log zerolog.Logger, malID int) (*domain.Anime, error) {
	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		anime, err := p.fetcher.FetchAnime(ctx, malID)
		if err == nil {
			return anime, nil
		}
		lastErr = err

		if attempt == p.maxRetries || ctx.Err() != nil {
			break
		}

		delay := p.retryBase * time.Duration(attempt)
		log.Debug().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("fetch failed, retrying")

		if err := p.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, errors.Wrapf(lastErr, "fetch failed after %d attempts", p.maxRetries)
}
