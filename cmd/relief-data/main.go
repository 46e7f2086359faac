package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relief-data/internal/auth"
	"relief-data/internal/client"
	"relief-data/internal/config"
	"relief-data/internal/database"
	"relief-data/internal/events"
	httpapi "relief-data/internal/http"
	"relief-data/internal/jobs"
	"relief-data/internal/logger"
	"relief-data/internal/repository"
	"relief-data/internal/selector"
	"relief-data/internal/service"
	"relief-data/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env 仅用于本地开发，缺失不是错误
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "relief-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// 本地缓存快照后端：单机 sqlite（断电/崩溃后可恢复），多副本部署 redis
	var kv store.KV
	var redisClient *redis.Client
	var sqliteKV *store.SqliteKV
	switch cfg.Cache.Backend {
	case "redis":
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		kv = store.NewRedisKV(redisClient)
		log.Info("Cache backend: redis", zap.String("addr", cfg.Cache.Redis.Addr))
	default:
		if s, err := store.NewSqliteKV(cfg.Cache.Path); err == nil {
			sqliteKV = s
			kv = s
			log.Info("Cache backend: sqlite", zap.String("path", cfg.Cache.Path))
		} else {
			log.Warn("Cannot open sqlite cache, running without local snapshot", zap.Error(err))
		}
	}
	var cache *store.SnapshotCache
	if kv != nil {
		cache = store.NewSnapshotCache(kv)
	}

	// Managed Database 层（可选）
	var db *sql.DB
	var centersRepo repository.CentersRepository
	var guestsRepo repository.GuestsRepository
	var managedProbe selector.Probe
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			pgCenters := repository.NewPostgresCentersRepository(db)
			pgGuests := repository.NewPostgresGuestsRepository(db)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := pgCenters.EnsureSchema(ctx); err != nil {
				log.Error("Failed to ensure centers schema", zap.Error(err))
			}
			if err := pgGuests.EnsureSchema(ctx); err != nil {
				log.Error("Failed to ensure guests schema", zap.Error(err))
			}
			cancel()
			centersRepo = pgCenters
			guestsRepo = pgGuests
			managedProbe = db.PingContext
			log.Info("Managed database enabled for relief-data")
		} else {
			// DB 配置了但连不上：降级到 remote/local，不阻塞启动
			log.Warn("DB enabled but connection failed, falling back to remote/local", zap.Error(err))
		}
	}

	// Remote Backend 层（可选，占位地址视同未配置）
	var remote *client.BackendClient
	var remoteProbe selector.Probe
	if cfg.Remote.Configured() {
		tokens := auth.NewStaticTokenSource(cfg.Remote.Token)
		remote = client.NewBackendClient(cfg.Remote.BaseURL, tokens, cfg.Remote.Timeout, log)
		remoteProbe = remote.Health
		log.Info("Remote backend enabled", zap.String("base_url", cfg.Remote.BaseURL))
	} else {
		log.Info("Remote backend not configured, skipping tier")
	}

	sel := selector.New(managedProbe, remoteProbe, log, selector.Options{
		Timeout: cfg.Remote.Timeout,
	})

	// MQTT 容量广播（可选）
	var publisher service.CenterPublisher
	var mqttPub *events.MQTTPublisher
	if cfg.MQTT.Enabled {
		if p, err := events.NewMQTTPublisher(&cfg.MQTT, log); err == nil {
			mqttPub = p
			publisher = p
			log.Info("MQTT capacity feed enabled", zap.String("broker", cfg.MQTT.Broker))
		} else {
			log.Warn("MQTT enabled but broker unreachable, running without feed", zap.Error(err))
		}
	}

	svc := service.NewReliefService(service.Deps{
		Centers:   centersRepo,
		Guests:    guestsRepo,
		Remote:    remote,
		Cache:     cache,
		Selector:  sel,
		Publisher: publisher,
		Logger:    log,
	})

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 60*time.Second)
	svc.Load(loadCtx)
	loadCancel()

	var runner *jobs.Runner
	if cfg.Jobs.Enabled {
		runner = jobs.Start(svc, log)
	}

	router := httpapi.NewRouter(log)
	router.RegisterReliefRoutes(
		httpapi.NewCenterHandler(svc, log),
		httpapi.NewGuestHandler(svc, log),
		httpapi.NewStatsHandler(svc, log),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)

	if runner != nil {
		runner.Stop()
	}
	if mqttPub != nil {
		mqttPub.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqliteKV != nil {
		_ = sqliteKV.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
