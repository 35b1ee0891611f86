package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	historyx "github.com/tanpawarit/neobank-assistant/agent/history"
	storex "github.com/tanpawarit/neobank-assistant/agent/store"
)

const (
	ErrorModeLegacy     = "legacy"
	ErrorModeStructured = "structured"
)

var ErrInvalidErrorMode = errors.New("invalid error mode")

// Config is loaded with the HTTP prefix. ErrorMode also reads a bare
// CHAT_ERROR_MODE.
type Config struct {
	Addr            string        `default:":8000"`
	AllowedOrigins  []string      `split_words:"true" default:"*"`
	ErrorMode       string        `envconfig:"CHAT_ERROR_MODE" default:"legacy"`
	ReadTimeout     time.Duration `split_words:"true" default:"30s"`
	WriteTimeout    time.Duration `split_words:"true" default:"120s"`
	IdleTimeout     time.Duration `split_words:"true" default:"120s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.ErrorMode)) {
	case "", ErrorModeLegacy, ErrorModeStructured:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidErrorMode, c.ErrorMode)
	}
}

func (c Config) structured() bool {
	return strings.EqualFold(strings.TrimSpace(c.ErrorMode), ErrorModeStructured)
}

// Dispatcher answers one chat message.
type Dispatcher interface {
	HandleMessage(ctx context.Context, message string, history []historyx.Turn) (string, error)
}

// AdminStore is the back-office surface over the bank data.
type AdminStore interface {
	Overview(ctx context.Context) (*storex.Overview, error)
	SearchTransactions(ctx context.Context, filter storex.TransactionFilter) ([]storex.TransactionView, error)
	PendingServiceRequests(ctx context.Context) ([]storex.ServiceRequest, error)
	ProcessedServiceRequests(ctx context.Context, limit int) ([]storex.ServiceRequest, error)
	SetServiceRequestStatus(ctx context.Context, id int64, status string) error
	DeleteServiceRequest(ctx context.Context, id int64) error
	ClearServiceRequests(ctx context.Context) (int64, error)
	Counts(ctx context.Context) (*storex.Counts, error)
	Ping(ctx context.Context) error
}

type Server struct {
	cfg   Config
	chat  Dispatcher
	admin AdminStore
}

// New builds the HTTP surface. admin may be nil, in which case the admin
// routes and the readiness probe are not mounted.
func New(cfg Config, chat Dispatcher, admin AdminStore) (*Server, error) {
	if chat == nil {
		return nil, errors.New("dispatcher is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Server{cfg: cfg, chat: chat, admin: admin}, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(s.cfg.AllowedOrigins))

	r.Post("/chat", s.handleChat)

	if s.admin != nil {
		r.Get("/ready", s.handleReady)
		r.Route("/admin", func(r chi.Router) {
			r.Get("/overview", s.handleOverview)
			r.Get("/counts", s.handleCounts)
			r.Get("/transactions", s.handleTransactions)
			r.Get("/requests/pending", s.handlePendingRequests)
			r.Get("/requests/processed", s.handleProcessedRequests)
			r.Post("/requests/{id}/approve", s.handleSetStatus(storex.StatusApproved))
			r.Post("/requests/{id}/reject", s.handleSetStatus(storex.StatusRejected))
			r.Delete("/requests/{id}", s.handleDeleteRequest)
			r.Delete("/requests", s.handleClearRequests)
		})
	}

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("http request")
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Str("error_mode", s.cfg.ErrorMode).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
