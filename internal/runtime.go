package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// server runs a handler until its context ends or a signal arrives.
type server struct {
	handler         http.Handler
	logger          *slog.Logger
	baseCtx         context.Context
	address         string
	hooks           []func(context.Context) error
	shutdownTimeout time.Duration
}

func newServer(h http.Handler, log *slog.Logger) *server {
	return &server{
		handler:         h,
		logger:          log,
		baseCtx:         context.Background(),
		address:         ":8080",
		shutdownTimeout: defaultShutdownTimeout,
	}
}

// run serves until SIGINT, SIGTERM or the end of the base context, then
// shuts the server down and runs the hooks.
func (s *server) run() error {
	ctx, stop := signal.NotifyContext(s.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("anvil: listen on %s: %w", s.address, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(srv)
	})
	return g.Wait()
}

// shutdown stops the server, then runs the hooks in reverse registration
// order. All hooks run even when one fails.
func (s *server) shutdown(srv *http.Server) error {
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.baseCtx), s.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("anvil: http shutdown: %w", err))
	}
	for i := len(s.hooks) - 1; i >= 0; i-- {
		if err := s.hooks[i](ctx); err != nil {
			s.logger.Error("shutdown hook failed", slog.Int("hook", i), slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.logger.Info("shutdown completed")
	return nil
}
