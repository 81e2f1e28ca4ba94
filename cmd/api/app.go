package main

import (
	"context"
	"fmt"
	"log"
	"time"

	config "github.com/anjiri1684/fitness_marketplace/configs"
	"github.com/anjiri1684/fitness_marketplace/database"
	"github.com/anjiri1684/fitness_marketplace/events"
	"github.com/anjiri1684/fitness_marketplace/notifications"
	"github.com/anjiri1684/fitness_marketplace/redisx"
	"github.com/anjiri1684/fitness_marketplace/repository"
	"github.com/anjiri1684/fitness_marketplace/services"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// app holds the infrastructure shared by every command. Redis and Kafka are
// optional and fall back to in-process behaviour when not configured.
type app struct {
	cfg   config.AppConfig
	db    *gorm.DB
	store *repository.GormStore
	rdb   *redis.Client
	kafka *events.KafkaPublisher

	configs *services.SystemConfigService
	email   *notifications.EmailDispatcher
}

func bootstrap(ctx context.Context, envFile string) (*app, error) {
	cfg := config.Load(envFile)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, db: db, store: repository.NewGormStore(db)}

	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := redisx.Ping(pingCtx, rdb); err != nil {
			log.Printf("⚠️ Redis unavailable at %s, running without locks and config cache: %v", cfg.RedisAddr, err)
			_ = rdb.Close()
		} else {
			log.Println("✅ Redis connected successfully")
			a.rdb = rdb
		}
	}

	if a.rdb != nil {
		a.configs = services.NewSystemConfigService(a.store, redisx.NewConfigCache(a.rdb))
	} else {
		a.configs = services.NewSystemConfigService(a.store, nil)
	}

	if brokers := events.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		a.kafka = events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		log.Printf("✅ Publishing settlement events to %s on %v", cfg.KafkaTopic, brokers)
	}

	if brevo := notifications.NewBrevoService(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName); brevo != nil {
		a.email = &notifications.EmailDispatcher{Brevo: brevo, Users: a.store.Users()}
		log.Println("✅ Email service initialized successfully")
	} else {
		log.Println("⚠️ Brevo is not configured, email notifications are disabled")
	}
	return a, nil
}

// deps builds the service collaborators. Callers add the scheduler and hook
// queue when they run long enough to use them.
func (a *app) deps(notifier notifications.Dispatcher) services.Deps {
	d := services.Deps{
		Store:    a.store,
		Configs:  a.configs,
		Notifier: notifier,
	}
	if a.rdb != nil {
		d.Locker = redisx.NewLocker(a.rdb)
	}
	if a.kafka != nil {
		d.Publisher = a.kafka
	}
	return d
}

func (a *app) emailNotifier() notifications.Dispatcher {
	if a.email == nil {
		return notifications.NopDispatcher{}
	}
	return a.email
}

func (a *app) close() {
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			log.Printf("⚠️ Kafka writer close: %v", err)
		}
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func withApp(ctx context.Context, envFile string, fn func(a *app) error) error {
	a, err := bootstrap(ctx, envFile)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer a.close()
	return fn(a)
}
