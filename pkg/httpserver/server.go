package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultReadHeaderTimeout = 10 * time.Second

type Option func(*Options)

type Options struct {
	addr        string
	logger      *zap.Logger
	handler     http.Handler
	middlewares []func(http.Handler) http.Handler
}

func WithAddr(addr string) Option {
	return func(o *Options) {
		o.addr = addr
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func WithHandler(handler http.Handler) Option {
	return func(o *Options) {
		o.handler = handler
	}
}

// WithMiddlewares wraps the handler outermost-first.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(o *Options) {
		o.middlewares = append(o.middlewares, mw...)
	}
}

type Server struct {
	httpServer *http.Server
	lis        net.Listener
	logger     *zap.Logger
}

// New creates a new HTTP server using the builder options.
func New(opts ...Option) (*Server, error) {
	options := &Options{
		addr:    ":8080",
		logger:  zap.NewNop(),
		handler: http.NewServeMux(),
	}

	for _, opt := range opts {
		opt(options)
	}

	lis, err := net.Listen("tcp", options.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", options.addr, err)
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := options.handler
	for i := len(options.middlewares) - 1; i >= 0; i-- {
		handler = options.middlewares[i](handler)
	}

	return &Server{
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
		},
		lis:    lis,
		logger: logger.Named("http-server"),
	}, nil
}

// Start runs the server in a goroutine and returns immediately.
func (s *Server) Start() {
	s.logger.Info("HTTP server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(s.lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

// Shutdown gracefully drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("forced shutdown due to timeout")
		_ = s.httpServer.Close()
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
