package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/the1323/cs166-project-the033-hbai013/internal/handler/health"
	"github.com/the1323/cs166-project-the033-hbai013/internal/handler/prometheus"
	"github.com/the1323/cs166-project-the033-hbai013/internal/middleware"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
)

// Router is the ops HTTP surface of the background commands: health probes
// and Prometheus metrics.
type Router struct {
	engine *gin.Engine
	logger *logger.Logger
}

func NewRouter(healthH *health.Handler, promH *prometheus.Handler, log *logger.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		middleware.RequestID(log),
		middleware.Recovery(log),
		middleware.Logger(log),
		promH.Middleware(),
	)

	healthH.RegisterRoutes(&engine.RouterGroup)
	engine.GET("/metrics", promH.Handler())

	return &Router{engine: engine, logger: log}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (r *Router) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("Ops server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ops server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ops server shutdown: %w", err)
	}
	return nil
}
