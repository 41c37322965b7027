package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/SantiagoTucci/circulo-matero/internal/cart"
	"github.com/SantiagoTucci/circulo-matero/internal/catalog"
	"github.com/SantiagoTucci/circulo-matero/internal/checkout"
	"github.com/SantiagoTucci/circulo-matero/internal/events"
	httpapi "github.com/SantiagoTucci/circulo-matero/internal/http"
	"github.com/SantiagoTucci/circulo-matero/internal/mail"
	"github.com/SantiagoTucci/circulo-matero/internal/persistence"
	"github.com/SantiagoTucci/circulo-matero/pkg/circuitbreaker"
	"github.com/SantiagoTucci/circulo-matero/pkg/config"
	"github.com/SantiagoTucci/circulo-matero/pkg/logger"
)

type publisher interface {
	checkout.Publisher
	Close() error
}

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if cfg.Port() == 0 {
		return fmt.Errorf("invalid HTTP_PORT %q", cfg.HTTPPort)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog
	products, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer products.Close()
	if err := products.RunMigrations(); err != nil {
		return fmt.Errorf("migrate catalog: %w", err)
	}
	log.Info("catalog ready", "path", cfg.CatalogDBPath)

	// Cart storage
	kv, closeKV, err := openKV(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeKV()

	registry := cart.NewRegistry(kv, cfg.CartExpiration, cart.WithRegistryLogger(log))
	defer registry.Close()

	// Checkout collaborators
	var sender checkout.Sender
	if cfg.SendGridAPIKey != "" {
		sender = mail.NewSendGridSender(mail.SendGridConfig{
			APIKey: cfg.SendGridAPIKey,
			Host:   cfg.SendGridHost,
			From:   cfg.OrderFromEmail,
			Inbox:  cfg.OrderInboxEmail,
		}, log)
	} else {
		log.Warn("SENDGRID_API_KEY not set, orders will only be logged")
		sender = mail.NewLogSender(log)
	}
	sender = mail.NewBreakerSender(sender, circuitbreaker.New(circuitbreaker.DefaultConfig("order-mail"), log))

	var pub publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewKafkaPublisher(log, cfg.KafkaBrokers...)
		log.Info("publishing order events", "brokers", cfg.KafkaBrokers, "topic", events.OrdersTopic)
	}
	defer pub.Close()

	service := checkout.NewService(sender, pub, log)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: httpapi.NewRouter(httpapi.RouterConfig{
			Catalog:        products,
			Carts:          registry,
			Checkout:       service,
			Logger:         log,
			RequestTimeout: cfg.RequestTimeout,
			SecureCookies:  cfg.SecureCookies(),
		}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("storefront listening", "port", cfg.HTTPPort, "store_backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down storefront")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("storefront stopped")
	return nil
}

// openKV connects the configured cart backend and returns a func releasing it.
func openKV(ctx context.Context, cfg config.Config, log *slog.Logger) (persistence.KV, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("redis ping succeeded", "addr", cfg.RedisAddr)
		return persistence.NewRedisKV(client, cfg.CartExpiration), func() { client.Close() }, nil

	case "mongo", "mongodb":
		client, err := persistence.ConnectMongoDB(ctx, persistence.MongoOptions{
			URI:         cfg.MongoURI,
			MaxPoolSize: cfg.MongoMaxPoolSize,
			MinPoolSize: cfg.MongoMinPoolSize,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		disconnect := func() { _ = client.Disconnect(context.Background()) }

		kv := persistence.NewMongoKV(client.Database(cfg.MongoDBName))
		if err := kv.CreateIndexes(ctx, cfg.CartExpiration); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info("connected to mongodb", "database", cfg.MongoDBName)
		return kv, disconnect, nil

	case "memory", "":
		return persistence.NewMemoryKV(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
