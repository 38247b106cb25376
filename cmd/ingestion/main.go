package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"lejio/tracking/internal/config"
	"lejio/tracking/internal/logging"
	"lejio/tracking/internal/notify"
	"lejio/tracking/internal/pipeline"
	"lejio/tracking/internal/provider"
	"lejio/tracking/internal/registry"
	"lejio/tracking/internal/store"
	httptransport "lejio/tracking/internal/transport/http"
	mqtttransport "lejio/tracking/internal/transport/mqtt"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("Could not read .env")
	}

	cfg := config.Load()
	if err := logging.Configure(cfg); err != nil {
		log.WithError(err).Fatal("Logging setup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := store.Migrate(cfg.MigrationURL()); err != nil {
			log.WithError(err).Fatal("Migrations failed")
		}
	}

	db, err := store.NewTimescaleStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Postgres unavailable")
	}
	defer db.Close()

	redis, err := store.NewRedisStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Redis unavailable")
	}
	defer redis.Close()

	publishers := notify.NewMulti(notify.NewRedisPublisher(redis))
	if cfg.RabbitMQURL != "" {
		rabbit, err := notify.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.WithError(err).Fatal("RabbitMQ unavailable")
		}
		defer rabbit.Close()
		publishers.Add(rabbit)
	}
	if cfg.NATSURL != "" {
		nc, err := notify.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			log.WithError(err).Fatal("NATS unavailable")
		}
		defer nc.Close()
		publishers.Add(nc)
	}

	resolver := registry.NewResolver(db, redis, cfg.DeviceCacheTTL())
	scheduler := cron.New()
	if _, err := resolver.ScheduleSweep(scheduler, cfg.DeviceCacheSweepCron); err != nil {
		log.WithError(err).Fatal("Cron setup failed")
	}
	scheduler.Start()
	defer scheduler.Stop()

	processor := pipeline.NewProcessor(
		resolver,
		pipeline.NewPositionWriter(db),
		db,
		pipeline.NewStateProjector(db, redis, cfg.LiveStateTTL()),
		pipeline.NewGeofenceEvaluator(db, publishers),
	)
	parsers := provider.DefaultRegistry()
	parsers.SetMaxClockSkew(cfg.TimestampMaxSkew())

	ingestor := pipeline.NewIngestor(
		parsers,
		processor,
		pipeline.NewDispatcher(cfg.IngestWorkers),
		db,
		cfg.IngestTimeout(),
	)

	if cfg.MQTTBroker != "" {
		sub := mqtttransport.NewSubscriber(ingestor, cfg.MQTTTopic, cfg.IngestTimeout())
		client, err := mqtttransport.Connect(cfg, sub)
		if err != nil {
			log.WithError(err).Fatal("MQTT unavailable")
		}
		defer client.Disconnect(250)
	}

	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httptransport.NewRouter(
		httptransport.NewWebhookHandler(ingestor, cfg.MaxBodyBytes),
		httptransport.NewQueryHandler(db, redis),
		httptransport.NewHealthChecker(map[string]httptransport.Pinger{
			"postgres": db,
			"redis":    redis,
		}),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":      cfg.HTTPPort,
			"providers": parsers.Names(),
			"sinks":     publishers.Len(),
		}).Info("GPS ingestion listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.IngestTimeout()+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP shutdown incomplete")
	}
}
