// Package api serves the member registration API.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	sharedconfig "github.com/startcommunity/startbot/src/config"
	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/metrics"
)

// Publisher announces new registrations to the bot.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]interface{}) (string, error)
}

// Deps are the collaborators the routes need. Events and Gatherer are optional.
type Deps struct {
	Members  *data.MemberStore
	Events   Publisher
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer
}

// New builds the gin engine.
func New(cfg sharedconfig.APIConfig, deps Deps) *gin.Engine {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestID())
	attachRoutes(r, cfg, deps)
	return r
}

func attachRoutes(r *gin.Engine, cfg sharedconfig.APIConfig, deps Deps) {
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	secret := []byte(cfg.JWTSecret)
	limiter := NewRateLimiter(cfg.RequestsPerMin, time.Minute)
	membersH := NewMembers(deps.Members, deps.Events, deps.Metrics)

	v1 := r.Group("/v1")
	v1.Use(JWTMiddleware(secret), RateLimitMiddleware(limiter))
	{
		v1.POST("/members", RequireScope(ScopeMembersWrite), membersH.Register)
		v1.GET("/members/:handle", RequireScope(ScopeMembersRead), membersH.Get)
	}
}

// Serve runs the API until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("api: listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	log.Printf("api: stopped")
	return nil
}
