package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"formpulse/internal/cache"
	"formpulse/internal/config"
	"formpulse/internal/repository"
	"formpulse/internal/service"
	"formpulse/internal/storage"
	"formpulse/internal/transport/rest"
	"formpulse/internal/transport/rest/middleware"
	"formpulse/internal/transport/ws"
	"formpulse/pkg/logger"
)

const connectTimeout = 10 * time.Second

// App owns the infrastructure clients and the services built on them
type App struct {
	Config *config.Config

	Mongo *mongo.Client
	Redis *redis.Client
	DB    *mongo.Database

	FormRepo       repository.FormRepo
	ResponseRepo   repository.ResponseRepo
	AnalyticsCache cache.AnalyticsCache
	Storage        storage.Provider

	AuthService      *service.AuthService
	FormService      *service.FormService
	ResponseService  *service.ResponseService
	AnalyticsService *service.AnalyticsService
	ExportService    *service.ExportService
	UploadService    *service.UploadService

	WSHub         *ws.Hub
	SubmitLimiter *middleware.RateLimiter
}

// Connect opens MongoDB and Redis and verifies both respond.
func Connect(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	mongoCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	client, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(mongoCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	a.Mongo = client
	a.DB = client.Database(cfg.Mongo.Database)
	logger.Log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	a.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisCtx, cancelRedis := context.WithTimeout(ctx, connectTimeout)
	defer cancelRedis()
	if err := a.Redis.Ping(redisCtx).Err(); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	a.FormRepo = repository.NewFormRepo(a.DB)
	a.ResponseRepo = repository.NewResponseRepo(a.DB)
	a.AnalyticsCache = cache.NewAnalyticsCache(a.Redis, cfg.Cache.AnalyticsTTL)
	return a, nil
}

// Build wires services, the live feed hub and the rate limiter.
func (a *App) Build(ctx context.Context) error {
	cfg := a.Config

	if err := repository.EnsureIndexes(ctx, a.DB); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	provider, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	a.Storage = provider

	a.WSHub = ws.NewHub()
	if err := a.WSHub.EnableRedisRelay(ctx, a.Redis); err != nil {
		logger.Log.Warn("live feed relay unavailable, delivering in-process only", zap.Error(err))
	}

	a.AuthService = service.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	a.FormService = service.NewFormService(a.FormRepo, a.ResponseRepo, a.AnalyticsCache)
	a.ResponseService = service.NewResponseService(a.FormRepo, a.ResponseRepo)
	a.AnalyticsService = service.NewAnalyticsService(a.FormRepo, a.ResponseRepo, a.AnalyticsCache)
	a.ExportService = service.NewExportService(a.FormRepo, a.ResponseRepo)
	a.UploadService = service.NewUploadService(a.FormRepo, provider, cfg.Storage.MaxUploadMB<<20)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	a.FormService.SetBroadcaster(a.WSHub)
	a.ResponseService.SetBroadcaster(a.WSHub)

	a.SubmitLimiter = middleware.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
	if err := a.SubmitLimiter.TrustProxies(cfg.RateLimit.TrustedProxies); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// Router builds the HTTP handler over the wired services.
func (a *App) Router() http.Handler {
	c := &rest.Container{
		AuthService:      a.AuthService,
		FormService:      a.FormService,
		ResponseService:  a.ResponseService,
		AnalyticsService: a.AnalyticsService,
		ExportService:    a.ExportService,
		UploadService:    a.UploadService,
		WSHub:            a.WSHub,
		SubmitLimiter:    a.SubmitLimiter,
		AllowedOrigins:   a.Config.CORS.AllowedOrigins,
		Tracing:          a.Config.Tracing.Enabled,
		HealthCheck:      a.healthCheck,
	}
	if local, ok := a.Storage.(*storage.LocalProvider); ok {
		c.LocalUploadDir = local.Root
	}
	return rest.NewRouter(c)
}

func (a *App) healthCheck(r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.Mongo.Ping(ctx, nil); err != nil {
		return err
	}
	return a.Redis.Ping(ctx).Err()
}

// Close releases everything Connect and Build opened.
func (a *App) Close(ctx context.Context) {
	if a.SubmitLimiter != nil {
		a.SubmitLimiter.Stop()
	}
	if a.WSHub != nil {
		a.WSHub.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Warn("redis close failed", zap.Error(err))
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			logger.Log.Warn("mongo disconnect failed", zap.Error(err))
		}
	}
}
