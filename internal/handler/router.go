// internal/handler/router.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/controller"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Controllers groups everything the router dispatches to.
type Controllers struct {
	Customers *controller.CustomerController
	History   *controller.HistoryController
	Content   *controller.ContentController
	Send      *controller.SendController
}

type RouterConfig struct {
	AllowedOrigins []string
	DB             Pinger
	Logger         *zap.Logger
}

// NewRouter wires every API route onto a chi router.
func NewRouter(c Controllers, cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", healthz(cfg.DB))
	r.Handle("/metrics", promhttp.Handler())

	// Customer routes
	r.Get("/customers", c.Customers.ListCustomers)
	r.Delete("/customers", c.Customers.DeleteAllCustomers)
	r.Post("/customers/import", c.Customers.ImportCustomers)
	r.Get("/customers/{id}", c.Customers.GetCustomer)
	r.Put("/customers/{id}", c.Customers.UpdateCustomer)
	r.Delete("/customers/{id}", c.Customers.DeleteCustomer)
	r.Post("/customers/{id}/preview", c.Customers.PreviewCustomer)
	r.Get("/industries", c.Customers.ListIndustries)

	// History routes
	r.Get("/import-history", c.History.ListImportHistory)
	r.Delete("/import-history", c.History.DeleteImportHistory)
	r.Get("/history", c.History.ListSendHistory)
	r.Delete("/history", c.History.DeleteAllSendHistory)
	r.Get("/history/export.csv", c.History.ExportSendHistory)
	r.Get("/history/{id}", c.History.GetSendHistory)
	r.Delete("/history/{id}", c.History.DeleteSendHistory)

	// Content routes
	r.Post("/generate", c.Content.GenerateHTML)
	r.Post("/generate-content", c.Content.GenerateContent)
	r.Post("/generate-personalized-bulk", c.Content.GeneratePersonalizedBulk)

	// Send routes
	r.Post("/send", c.Send.Send)
	r.Post("/send-test", c.Send.SendTest)
	r.Post("/bulk-send", c.Send.BulkSend)
	r.Post("/bulk-send/jobs", c.Send.EnqueueBulkSend)
	r.Get("/bulk-send/jobs/{id}", c.Send.GetBulkSendJob)
	r.Get("/presets", c.Send.ListPresets)

	return r
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				status, code = "database unavailable", http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
