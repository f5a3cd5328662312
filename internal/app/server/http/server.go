// Package http настраивает middleware и запускает HTTP-сервер.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	handlershttp "github.com/aseptimu/shortlink/internal/app/handlers/http"
	"github.com/aseptimu/shortlink/internal/app/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	srv    *http.Server
	logger *zap.SugaredLogger
}

// NewServer собирает gin-роутер: логирование, gzip, CORS и маршруты h.
func NewServer(addr string, allowedOrigins []string, logger *zap.SugaredLogger, h handlershttp.Handlers) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	logger.Debug("Setting up middleware")
	r.Use(
		gin.Recovery(),
		middleware.MiddlewareLogger(logger),
		middleware.CORSMiddleware(allowedOrigins),
		middleware.GzipMiddleware(),
	)
	h.RegisterRoutes(r)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler возвращает корневой обработчик сервера.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run слушает адрес сервера до отмены ctx, затем корректно завершает соединения.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает ln до отмены ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Infow("Starting HTTP server", "addr", ln.Addr().String())

	var (
		wg          sync.WaitGroup
		shutdownErr error
	)
	stopped := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		s.logger.Infow("Shutting down server", "reason", context.Cause(ctx))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorw("Error shutting down server", "error", err)
			shutdownErr = err
		}
	}()

	err := s.srv.Serve(ln)
	close(stopped)
	wg.Wait()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return shutdownErr
}
