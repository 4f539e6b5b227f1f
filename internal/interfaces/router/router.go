package router

import (
	"errors"
	"net/http"

	distsvc "profitshare-backend/internal/application/distributions"
	"profitshare-backend/internal/application/notifications"
	txsvc "profitshare-backend/internal/application/transactions"
	walletsvc "profitshare-backend/internal/application/wallets"
	"profitshare-backend/internal/config"
	"profitshare-backend/internal/infrastructure/database"
	disthandler "profitshare-backend/internal/interfaces/handlers/distributions"
	healthhandler "profitshare-backend/internal/interfaces/handlers/health"
	txhandler "profitshare-backend/internal/interfaces/handlers/transactions"
	wallethandler "profitshare-backend/internal/interfaces/handlers/wallets"
	"profitshare-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrNoDatabase = errors.New("database url is not configured")

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, nil, ErrNoDatabase
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
	}, cfg.Env != "production"))

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
		app.Use(middleware.HealthMarker(rdb))
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Env != "production" || database.IsSQLite(cfg.DatabaseURL) {
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, nil, err
	}

	var nc *nats.Conn
	if cfg.HasSink("nats") && cfg.NATSURL != "" {
		nc, err = notifications.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Warn().Err(err).Msg("NATS notifications disabled")
			nc = nil
		}
	}

	dispatcher := notifications.NewDispatcher(cfg.NotifyBuffer, cfg.DistributionIOTimeout, notificationSinks(cfg, db, rdb, nc)...)
	app.Hooks().OnShutdown(func() error {
		_ = dispatcher.Close()
		if nc != nil {
			nc.Close()
		}
		if rdb != nil {
			_ = rdb.Close()
		}
		return sqlDB.Close()
	})

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             sqlDB,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if nc != nil {
		hh.Bus = nc
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	// Distributions
	ds := distsvc.NewService(db, dispatcher, distsvc.Config{
		Currency:    cfg.LedgerCurrency,
		Scale:       distsvc.Scale(cfg.LedgerScale),
		Workers:     cfg.DistributionWorkers,
		MaxAttempts: cfg.DistributionMaxAttempts,
		BackoffBase: cfg.DistributionBackoffBase,
		BackoffMax:  cfg.DistributionBackoffMax,
		IOTimeout:   cfg.DistributionIOTimeout,
	})
	dh := &disthandler.Handlers{Service: ds}
	dg := app.Group("/api/v1/distributions")
	dg.Post("/run", dh.Run)
	dg.Get("/", dh.List)
	dg.Get("/stats", dh.Stats)
	dg.Get("/:batch_id", dh.Get)

	// Wallets
	wh := &wallethandler.Handlers{Service: &walletsvc.Service{DB: db}}
	app.Get("/api/v1/wallets/:investor_id", wh.GetWallet)

	// Transactions
	txh := &txhandler.Handlers{Service: &txsvc.Service{DB: db}}
	txg := app.Group("/api/v1/transactions")
	txg.Get("/get-transactions", txh.GetTransactions)

	return app, db, rdb, nil
}

func notificationSinks(cfg *config.Config, db *gorm.DB, rdb *redis.Client, nc *nats.Conn) []notifications.Sink {
	var sinks []notifications.Sink
	if cfg.HasSink("db") {
		sinks = append(sinks, &notifications.DBSink{DB: db})
	}
	if cfg.HasSink("redis") && rdb != nil {
		sinks = append(sinks, &notifications.RedisSink{Client: rdb})
	}
	if nc != nil {
		sinks = append(sinks, &notifications.NATSSink{Conn: nc})
	}
	return sinks
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
