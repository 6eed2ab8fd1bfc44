package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	configapi "uptime-config/api/v1/config"
	"uptime-config/api/v1/health"
)

type Dependencies struct {
	Syncer       configapi.Syncer
	Store        health.Pinger
	Logger       *zap.Logger
	AllowOrigins []string
}

// NewRouter wires the configuration and health endpoints.
func NewRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(requestLogger(logger.Named("http")), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(deps.AllowOrigins) == 0 || (len(deps.AllowOrigins) == 1 && deps.AllowOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = deps.AllowOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	SetupRoutes(r, deps, logger)
	return r
}

func SetupRoutes(r *gin.Engine, deps Dependencies, logger *zap.Logger) {
	cfg := configapi.NewHandler(deps.Syncer, logger.Named("config"))
	r.GET("/api/config", cfg.GetConfig)
	r.POST("/api/config", cfg.PostConfig)

	v1 := r.Group("/api/v1")
	{
		healthApi := v1.Group("/health")
		{
			healthApi.GET("", health.GetHealth(deps.Store, logger.Named("health")))
		}
	}
}

// StartServer serves r on addr until ctx is cancelled, then drains in-flight requests.
func StartServer(ctx context.Context, addr string, r http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
