package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/knowledgecopilot/backend/internal/config"
	docsvc "github.com/knowledgecopilot/backend/internal/document/service"
	"github.com/knowledgecopilot/backend/internal/tokens"
	"github.com/knowledgecopilot/backend/internal/users"
	workspacesvc "github.com/knowledgecopilot/backend/internal/workspace/service"
	"github.com/knowledgecopilot/backend/pkg/middleware"
)

var startTime = time.Now()

// Deps carries the services the router wires into handlers. Redis is
// optional; when nil the in-memory rate limiter is used.
type Deps struct {
	Cfg        *config.Config
	Users      *users.Service
	Workspaces *workspacesvc.Service
	Documents  *docsvc.Service
	Redis      *redis.Client
	MongoOK    func() bool
}

// NewRouter assembles the full HTTP surface minus the /metrics endpoint,
// which the server binary registers against the default registry.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and
	// respond to OPTIONS. Production should use a stricter policy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	verifier := middleware.VerifierFunc(func(ctx context.Context, raw string) (*tokens.Claims, error) {
		return tokens.Parse(d.Cfg, raw)
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["mongo"] = d.MongoOK == nil || d.MongoOK()
		if !deps["mongo"] {
			ready = false
		}
		if d.Cfg.RateLimit.UseRedis {
			deps["redis"] = d.Redis != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	RegisterSwagger(r)

	// auth endpoints sit behind a stricter limiter bucket than the rest
	// of the API
	public := r.Group("/")
	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(verifier))
	if d.Cfg.RateLimit.Enabled {
		rl := d.Cfg.RateLimit
		if rl.UseRedis && d.Redis != nil {
			win := time.Duration(rl.WindowSeconds) * time.Second
			public.Use(middleware.RedisRateLimitMiddleware(d.Redis, rl.AuthRPS, rl.AuthBurst, win))
			authed.Use(middleware.RedisRateLimitMiddleware(d.Redis, rl.RPS, rl.Burst, win))
		} else {
			public.Use(middleware.RateLimitMiddleware(rl.AuthRPS, rl.AuthBurst))
			authed.Use(middleware.RateLimitMiddleware(rl.RPS, rl.Burst))
		}
	}

	NewAuthHandler(d.Cfg, d.Users).Register(public, authed)
	NewUsersHandler(d.Users).Register(authed)
	NewWorkspacesHandler(d.Workspaces).Register(authed)
	NewDocumentsHandler(d.Cfg, d.Documents).Register(authed)

	return r
}
