package main

import (
	"context"
	"os"
	"time"

	"pasr-server/config"
	"pasr-server/routes"
	"pasr-server/services"
	"pasr-server/storage"
	"pasr-server/utils"

	"github.com/hibiken/asynq"
	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"github.com/kataras/iris/v12/sessions/sessiondb/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		golog.Fatalf("config: %v", err)
	}
	golog.SetLevel(cfg.LogLevel)

	db, err := storage.Connect(cfg.DBConnectionString)
	if err != nil {
		golog.Fatalf("database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		golog.Fatalf("migrate: %v", err)
	}
	store := storage.NewStore(db)

	rdb := storage.NewRedis(cfg.RedisURL)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := storage.PingRedis(pingCtx, rdb); err != nil {
		golog.Warnf("redis unavailable, session locations will fail: %v", err)
	}
	cancel()

	// Background enrichment
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisURL}
	taskClient := asynq.NewClient(redisOpt)
	geocoder := services.NewMapbox(cfg.MapToken, cfg.MapboxBaseURL)
	worker := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.EnrichmentConcurrency,
		Queues:      map[string]int{services.EnrichmentQueue: 1},
		Logger:      golog.Default,
	})
	if err := worker.Start(services.NewEnrichmentMux(services.NewProfileEnricher(geocoder, store))); err != nil {
		golog.Fatalf("enrichment worker: %v", err)
	}

	var images services.ImageStore = storage.DisabledImages{}
	if cfg.CloudinaryConfigured() {
		cld, err := storage.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret,
			cfg.CloudinaryFolder, cfg.CloudinaryBaseURL)
		if err != nil {
			golog.Fatalf("images: %v", err)
		}
		images = cld
	} else {
		golog.Warn("cloudinary credentials missing, image uploads are disabled")
	}

	limiter := utils.NewRateLimiter(5, 10)
	stopLimiter := make(chan struct{})
	go limiter.Run(stopLimiter)

	app := iris.New()
	if cfg.TrustProxy {
		app.Configure(iris.WithRemoteAddrHeader("X-Forwarded-For"))
	}
	app.Logger().SetLevel(cfg.LogLevel)
	app.Use(iris.Compression)

	sessionDB := redis.New(redis.Config{
		Network: "tcp",
		Addr:    cfg.RedisURL,
		Timeout: 30 * time.Second,
		Prefix:  "pasr:session:",
		Driver:  redis.GoRedis(),
	})
	sess := sessions.New(sessions.Config{
		Cookie:       "pasr.sid",
		Expires:      cfg.SessionTTL,
		AllowReclaim: true,
	})
	sess.UseDatabase(sessionDB)
	app.Use(sess.Handler())

	h := &routes.Handlers{
		Store:        store,
		Listings:     store,
		Customers:    store,
		Reviews:      store,
		Audit:        store,
		Locations:    storage.NewSessionLocations(rdb, cfg.SessionTTL),
		Discovery:    services.NewDiscovery(store, cfg.Location()),
		Calendars:    services.NewAvailabilityEngine(store),
		Geocoder:     geocoder,
		Enrichment:   services.NewTaskQueue(taskClient),
		Images:       images,
		Cascade:      services.NewCascade(store, images),
		AdminHandles: cfg.AdminHandles,
		Limiter:      limiter,
		StartedAt:    time.Now(),
	}
	h.Register(app)

	iris.RegisterOnInterrupt(func() {
		close(stopLimiter)
		worker.Shutdown()
		if err := taskClient.Close(); err != nil {
			golog.Errorf("close task client: %v", err)
		}
		if err := sessionDB.Close(); err != nil {
			golog.Errorf("close session store: %v", err)
		}
		if err := rdb.Close(); err != nil {
			golog.Errorf("close redis: %v", err)
		}
	})

	addr := "0.0.0.0:" + cfg.Port
	golog.Infof("server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		golog.Errorf("server failed: %v", err)
		os.Exit(1)
	}
}
