package app

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/anime"
	"github.com/varoOP/malmirror/internal/api"
	"github.com/varoOP/malmirror/internal/cache"
	"github.com/varoOP/malmirror/internal/database"
	"github.com/varoOP/malmirror/internal/domain"
	"github.com/varoOP/malmirror/internal/jikan"
	"github.com/varoOP/malmirror/internal/metrics"
	"github.com/varoOP/malmirror/internal/notification"
	"github.com/varoOP/malmirror/internal/pipeline"
	"github.com/varoOP/malmirror/internal/repository"
)

// App represents the main application with all dependencies initialized
type App struct {
	log      zerolog.Logger
	config   *domain.Config
	db       *database.DB
	metrics  *metrics.Metrics
	service  *anime.Service
	ids      domain.IDSource
	pipeline *pipeline.Pipeline
	notifier domain.NotificationService
	exporter domain.ExportRepository
}

// NewApp opens the database and wires every service around it
func NewApp(cfg *domain.Config, log zerolog.Logger) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize database")
	}

	m := metrics.New()
	store := cache.New(cfg.Cache, log)
	service := anime.NewService(log, database.NewAnimeRepo(log, db), store, cfg.Cache.TTL, m)

	fetcher := jikan.NewClient(log, cfg.Jikan, m)
	progress := pipeline.NewFileProgressStore(log, cfg.Sync.ProgressFile)

	return &App{
		log:      log,
		config:   cfg,
		db:       db,
		metrics:  m,
		service:  service,
		ids:      jikan.NewIDSource(log, cfg.Sync.IDSource),
		pipeline: pipeline.NewPipeline(log, service, fetcher, progress, cfg.Sync, m),
		notifier: notification.NewService(log, cfg.DiscordWebhookURL),
		exporter: repository.NewFileRepository(log),
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Sync loads the id list and runs the pipeline over it
func (a *App) Sync(ctx context.Context, opts domain.SyncOptions) (report domain.SyncReport, err error) {
	// Send error notification if run fails
	defer func() {
		if err != nil {
			if notifyErr := a.notifier.SendError(ctx, err); notifyErr != nil {
				a.log.Warn().Err(notifyErr).Msg("Failed to send error notification")
			}
		}
	}()

	if opts.Kind == "" {
		opts.Kind = a.config.Sync.Kind
	}

	ids, err := a.ids.Load(ctx)
	if err != nil {
		return report, errors.Wrap(err, "failed to load id list")
	}

	report, err = a.pipeline.Run(ctx, ids, opts)
	if err != nil {
		return report, errors.Wrap(err, "sync interrupted")
	}

	if notifyErr := a.notifier.SendSuccess(ctx, report); notifyErr != nil {
		a.log.Warn().Err(notifyErr).Msg("Failed to send success notification")
	}

	return report, nil
}

// Serve runs the read API until ctx is cancelled. When a sync schedule is
// configured, resumable syncs run in the background on that schedule.
func (a *App) Serve(ctx context.Context) error {
	if expr := a.config.Sync.Cron; expr != "" {
		c, err := a.Schedule(expr, domain.SyncOptions{Resume: true})
		if err != nil {
			return err
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
	}

	return api.NewServer(a.log, a.service, a.metrics).ListenAndServe(ctx, a.config.Server.Addr)
}

// Schedule returns a cron scheduler that runs Sync with opts on the cron expression expr. A run
// that is still going when the next one is due causes that tick to be skipped.
func (a *App) Schedule(expr string, opts domain.SyncOptions) (*cron.Cron, error) {
	logger := cronLogger{log: a.log.With().Str("module", "cron").Logger()}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))

	_, err := c.AddFunc(expr, func() {
		if _, err := a.Sync(context.Background(), opts); err != nil {
			a.log.Error().Err(err).Msg("scheduled sync failed")
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "invalid sync schedule %q", expr)
	}

	a.log.Info().Str("schedule", expr).Msg("sync scheduled")
	return c, nil
}

// Export writes every stored entity to path in the given format (json or yaml)
func (a *App) Export(ctx context.Context, path, format string) (int, error) {
	list, err := a.service.FindAll(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read catalog")
	}

	switch strings.ToLower(format) {
	case "json":
		err = a.exporter.StoreJSON(ctx, path, list)
	case "yaml", "yml":
		err = a.exporter.StoreYAML(ctx, path, list)
	default:
		return 0, errors.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to export")
	}

	a.log.Info().Int("count", len(list)).Str("path", path).Msg("export complete")
	return len(list), nil
}

type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
