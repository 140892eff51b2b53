package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"user-backend/internal/classifications"
	"user-backend/internal/events"
	"user-backend/internal/rpc"
	"user-backend/internal/shared/config"
	"user-backend/internal/shared/server"
	"user-backend/internal/shared/server/middleware"
	"user-backend/internal/shared/storage/db"
	redisstore "user-backend/internal/shared/storage/redis"
	"user-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	RPCRouter *gin.Engine
	DB        *sql.DB
	Redis     *redisstore.Client
	Events    events.Publisher

	UsersRepo             users.Repo
	ClassificationsRepo   classifications.Repo
	ClassificationsSource classifications.Source

	UsersService           *users.Service
	ClassificationsService *classifications.Service

	UsersHandler           *users.Handler
	ClassificationsHandler *classifications.Handler
	RPCServer              *rpc.Server
}

// Build prepares shared dependencies and wires both routers.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Events: buildEvents(cfg),
	}

	if sqlDB != nil {
		app.UsersRepo = &users.PGRepo{DB: sqlDB}
		app.ClassificationsRepo = &classifications.PGRepo{DB: sqlDB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ClassificationsRepo = classifications.NewMemoryRepo()
	}

	app.ClassificationsSource = buildSource(ctx, cfg)

	var channels users.ChannelCreator
	if cfg.ChannelsRPCURL != "" {
		channels = rpc.NewClient(cfg.ChannelsRPCURL, 0)
	}

	app.UsersService = &users.Service{
		Repo:     app.UsersRepo,
		Events:   app.Events,
		Channels: channels,
	}
	app.ClassificationsService = classifications.NewService(
		app.ClassificationsRepo,
		app.ClassificationsSource,
		cfg.ClassificationExpireDays,
	)

	app.UsersHandler = users.NewHandler(app.UsersService)
	app.ClassificationsHandler = classifications.NewHandler(app.ClassificationsService)
	app.RPCServer = rpc.NewServer(app.UsersService, app.ClassificationsService)

	if err := users.RegisterValidations(); err != nil {
		return nil, fmt.Errorf("register validations: %w", err)
	}

	limiter, redisClient := buildLimiter(cfg)
	app.Redis = redisClient

	app.Router = server.NewRouter(server.RouterDeps{
		Config:                cfg,
		DB:                    sqlDB,
		Limiter:               limiter,
		UserHandler:           app.UsersHandler,
		ClassificationHandler: app.ClassificationsHandler,
	})
	app.RPCRouter = app.RPCServer.Engine()

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildSource(ctx context.Context, cfg config.Config) classifications.Source {
	if cfg.ClassificationSourceURL == "" {
		log.Printf("bootstrap: CLASSIFICATION_SOURCE_URL empty; classification refreshes will find no data")
		return classifications.AbsentSource{}
	}
	if cfg.SourceTokenURL != "" && cfg.SourceClientID != "" {
		return classifications.NewOAuthHTTPSource(
			ctx,
			cfg.ClassificationSourceURL,
			cfg.SourceTokenURL,
			cfg.SourceClientID,
			cfg.SourceClientSecret,
			cfg.ClassificationSourceTimeout,
		)
	}
	return classifications.NewHTTPSource(cfg.ClassificationSourceURL, cfg.ClassificationSourceTimeout)
}

func buildEvents(cfg config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NoopPublisher{}
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Printf("bootstrap: broker connect failed; events disabled: %v", err)
		return events.NoopPublisher{}
	}
	return publisher
}

func buildLimiter(cfg config.Config) (middleware.Limiter, *redisstore.Client) {
	if cfg.RedisAddr == "" {
		return middleware.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), nil
	}
	client, err := redisstore.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("bootstrap: redis connect failed; falling back to in-memory rate limiting: %v", err)
		return middleware.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), nil
	}
	return middleware.NewRedisLimiter(client.Native, cfg.RateLimitBurst, 0, "user-backend"), client
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "":
		return true
	default:
		return false
	}
}
