package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/knowledgecopilot/backend/handlers"
	"github.com/knowledgecopilot/backend/internal/config"
	"github.com/knowledgecopilot/backend/internal/database"
	docrepo "github.com/knowledgecopilot/backend/internal/document/repository"
	docsvc "github.com/knowledgecopilot/backend/internal/document/service"
	"github.com/knowledgecopilot/backend/internal/storage"
	"github.com/knowledgecopilot/backend/internal/users"
	wsrepo "github.com/knowledgecopilot/backend/internal/workspace/repository"
	workspacesvc "github.com/knowledgecopilot/backend/internal/workspace/service"
	"github.com/knowledgecopilot/backend/pkg/logger"
	"github.com/knowledgecopilot/backend/pkg/metrics"
)

func main() {
	// logging level is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")
	if cfg.JWT.Secret == "" {
		logger.Fatalf("JWT_SECRET must be set")
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// connect Redis early so the rate limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()
	db := client.Database(cfg.MongoDB.Database)

	store, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		logger.Fatalf("could not initialize object storage: %v", err)
	}

	userSvc := users.NewService(users.NewMongoUserRepository(db.Collection("users")))
	workspaceSvc := workspacesvc.NewService(wsrepo.NewMongoRepo(db.Collection("workspaces")))
	documentSvc := docsvc.NewService(docrepo.NewMongoRepo(db.Collection("documents")), store, workspaceSvc)

	r := handlers.NewRouter(handlers.Deps{
		Cfg:        cfg,
		Users:      userSvc,
		Workspaces: workspaceSvc,
		Documents:  documentSvc,
		Redis:      redisClient,
		MongoOK: func() bool {
			return client.Ping(ctx, nil) == nil
		},
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting knowledge-copilot backend on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
