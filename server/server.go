package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/poiesic/soundbite/core"
)

const (
	// DefaultVersion is reported by the root route.
	DefaultVersion = "1.0.0"

	// DefaultMaxDescriptions caps the phrases accepted by add-audio.
	DefaultMaxDescriptions = 100

	// DefaultShutdownTimeout bounds graceful shutdown in Run.
	DefaultShutdownTimeout = 5 * time.Second

	serviceName = "Automated Audio Response System"
)

// Matcher is the engine surface the HTTP layer drives.
type Matcher interface {
	Match(ctx context.Context, text string, method core.Method) (*core.Decision, error)
	InsertClip(ctx context.Context, id string, phrases []string) bool
	SetThreshold(value float64) bool
	Stats() core.Stats
}

// Server serves a Matcher over HTTP.
type Server struct {
	matcher         Matcher
	echo            *echo.Echo
	version         string
	maxDescriptions int
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithVersion sets the version reported by the root route.
func WithVersion(version string) Option {
	return func(s *Server) error {
		s.version = version
		return nil
	}
}

// WithMaxDescriptions caps the number of phrases one add-audio request may carry.
// Default is DefaultMaxDescriptions.
func WithMaxDescriptions(n int) Option {
	return func(s *Server) error {
		if n < 1 {
			return fmt.Errorf("%w: max descriptions must be positive, got %d", ErrInvalidOption, n)
		}
		s.maxDescriptions = n
		return nil
	}
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) error {
		if d <= 0 {
			return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalidOption)
		}
		s.shutdownTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a server for matcher. A nil matcher is allowed: every route
// that needs it answers 500 until the process is restarted with one.
func New(matcher Matcher, opts ...Option) (*Server, error) {
	s := &Server{
		matcher:         matcher,
		version:         DefaultVersion,
		maxDescriptions: DefaultMaxDescriptions,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "http-server")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	s.echo = e
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.Root)

	api := s.echo.Group("/api", middleware.CORS())
	api.GET("/health", s.Health)
	api.GET("/stats", s.Stats)
	api.POST("/process", s.Process)

	admin := api.Group("/admin")
	admin.POST("/add-audio", s.AddAudio)
	admin.POST("/update-threshold", s.UpdateThreshold)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		err := s.echo.Start(addr)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
