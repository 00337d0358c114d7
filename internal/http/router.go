package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	FrontendURL         string
	RequestTimeout      time.Duration
	MaxRequestBodyBytes int64
}

type Handlers struct {
	Checkout     *CheckoutHandler
	Classes      *ClassesHandler
	Confirmation *ConfirmationHandler
}

func NewRouter(cfg RouterConfig, h Handlers, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.FrontendURL},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", IdempotencyKeyHeader, "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Compress(5))
	if cfg.MaxRequestBodyBytes > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodyBytes))
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)
		r.Post("/create-checkout-session", h.Checkout.CreateCheckoutSession)
		r.Get("/classes", h.Classes.ListClasses)
		r.Get("/classes/{classID}", h.Classes.GetClass)
		r.Post("/quote", h.Classes.Quote)
		r.Get("/confirmation", h.Confirmation.GetConfirmation)
	})

	return otelhttp.NewHandler(r, "booking-api")
}

type HealthResponseDTO struct {
	OK bool `json:"ok"`
}

// GET /api/health
func Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponseDTO{OK: true})
}
