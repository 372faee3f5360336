package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/malmirror/internal/domain"
	"github.com/varoOP/malmirror/internal/metrics"
)

const defaultLimit = 25

// Server exposes read-only access to the mirrored catalog. Every read goes
// through the anime service so the cache is used.
type Server struct {
	log     zerolog.Logger
	service domain.AnimeService
	metrics *metrics.Metrics
	engine  *gin.Engine
}

func NewServer(log zerolog.Logger, service domain.AnimeService, m *metrics.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		log:     log.With().Str("module", "api").Logger(),
		service: service,
		metrics: m,
		engine:  gin.New(),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()

	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	s.engine.GET("/anime", s.handleList)
	s.engine.GET("/anime/count", s.handleCount)
	s.engine.GET("/anime/:id", s.handleGet)

	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleGet(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	anime, err := s.service.FindByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": anime})
}

func (s *Server) handleList(c *gin.Context) {
	opts, err := queryOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	anime, err := s.service.FindByQuery(ctx, opts)
	if err != nil {
		s.fail(c, err)
		return
	}

	total, err := s.service.CountByQuery(ctx, opts)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  anime,
		"page":  *opts.Page,
		"limit": *opts.Limit,
		"total": total,
	})
}

func (s *Server) handleCount(c *gin.Context) {
	opts, err := queryOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := s.service.CountByQuery(c.Request.Context(), opts)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": total})
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		return
	}

	s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// queryOptions reads page, limit, order_by, order, q and filter[<column>]
// from the query string. Column names are checked later against the schema.
func queryOptions(c *gin.Context) (domain.QueryOptions, error) {
	page, err := nonNegative(c.DefaultQuery("page", "1"), "page")
	if err != nil {
		return domain.QueryOptions{}, err
	}

	limit, err := nonNegative(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)), "limit")
	if err != nil {
		return domain.QueryOptions{}, err
	}

	opts := domain.QueryOptions{
		Page:           &page,
		Limit:          &limit,
		OrderBy:        c.Query("order_by"),
		OrderDirection: domain.SortDirection(c.Query("order")).Normalize(),
		Search:         c.Query("q"),
	}

	if filters := c.QueryMap("filter"); len(filters) > 0 {
		opts.Filters = make(map[string]any, len(filters))
		for k, v := range filters {
			opts.Filters[k] = v
		}
	}

	return opts, nil
}

func nonNegative(raw, name string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}
