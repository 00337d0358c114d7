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
	"time"

	"github.com/launchset/gym-booking/internal/cache"
	"github.com/launchset/gym-booking/internal/catalog"
	"github.com/launchset/gym-booking/internal/config"
	h "github.com/launchset/gym-booking/internal/http"
	"github.com/launchset/gym-booking/internal/logger"
	"github.com/launchset/gym-booking/internal/metrics"
	"github.com/launchset/gym-booking/internal/payment"
	"github.com/launchset/gym-booking/internal/presenter"
	"github.com/launchset/gym-booking/internal/pricing"
	"github.com/launchset/gym-booking/internal/publisher"
	"github.com/launchset/gym-booking/internal/service"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func main() {
	cfg := config.MustLoad()

	log := logger.Setup(cfg.Env, os.Stdout)
	slog.SetDefault(log)
	log.Info("starting booking api", slog.String("env", cfg.Env))

	if err := run(cfg, log); err != nil {
		log.Error("booking api stopped", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("server exited")
}

// run owns every resource it opens, so deferred closes happen before main exits.
func run(cfg *config.Config, log *slog.Logger) error {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	metrics.Register()

	cat, promos, err := loadCatalog(context.Background(), cfg.Catalog, log)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	engine := pricing.NewEngine(promos, cfg.Stripe.Currency)

	provider := payment.NewStripeProvider(payment.StripeConfig{
		SecretKey:  cfg.Stripe.SecretKey,
		APIBaseURL: cfg.Stripe.APIBase,
		HTTPClient: &http.Client{Timeout: cfg.HTTP.RequestTimeout},
	}, log)

	var sessionCache cache.SessionCache = cache.NopCache{}
	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, idempotency replay disabled", slog.Any("error", err))
		} else {
			sessionCache = cache.NewRedisCache(redisClient, cfg.Redis.IdempotencyTTL)
			log.Info("idempotency cache enabled", slog.String("addr", cfg.Redis.Addr))
		}
		cancel()
	}

	var events service.EventPublisher
	if cfg.Kafka.Enabled() {
		sessionPublisher := publisher.NewSessionPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer func() {
			if err := sessionPublisher.Close(); err != nil {
				log.Error("failed to close kafka writer", slog.Any("error", err))
			}
		}()
		events = sessionPublisher
		log.Info("publishing checkout events", slog.String("topic", cfg.Kafka.Topic))
	}

	checkoutService := service.NewCheckoutService(provider, sessionCache, events, service.CheckoutOptions{
		Domain:             cfg.Stripe.Domain,
		PaymentMethodTypes: cfg.Stripe.PaymentMethodTypes,
		CallTimeout:        cfg.HTTP.RequestTimeout,
	}, log)

	router := h.NewRouter(h.RouterConfig{
		FrontendURL:         cfg.HTTP.FrontendURL,
		RequestTimeout:      cfg.HTTP.RequestTimeout,
		MaxRequestBodyBytes: cfg.HTTP.MaxRequestBodyBytes,
	}, h.Handlers{
		Checkout:     h.NewCheckoutHandler(service.NewBookingBuilder(cat, engine), checkoutService, cfg.HTTP.RequestTimeout, log),
		Classes:      h.NewClassesHandler(cat, engine),
		Confirmation: h.NewConfirmationHandler(presenter.New(cat, engine)),
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("booking api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutting down server...")
	case err := <-errChan:
		return fmt.Errorf("serve: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.Any("error", err))
	}
	return nil
}

// loadCatalog reads classes and promo codes from SQLite when a path is
// configured, otherwise it uses the built-in set.
func loadCatalog(ctx context.Context, cfg config.CatalogConfig, log *slog.Logger) (*catalog.Catalog, *pricing.PromoBook, error) {
	if cfg.DBPath == "" {
		return catalog.Default(), pricing.DefaultPromoBook(), nil
	}

	repo, err := catalog.NewRepository(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return nil, nil, fmt.Errorf("migrate catalog: %w", err)
	}

	offerings, err := repo.LoadOfferings(ctx)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.New(offerings)
	if err != nil {
		return nil, nil, err
	}

	codes, err := repo.LoadPromoCodes(ctx)
	if err != nil {
		return nil, nil, err
	}
	promos, err := pricing.NewPromoBook(codes)
	if err != nil {
		return nil, nil, err
	}

	log.Info("catalog loaded from sqlite",
		slog.String("path", cfg.DBPath),
		slog.Int("classes", len(offerings)),
		slog.Int("promo_codes", promos.Len()))

	return cat, promos, nil
}
