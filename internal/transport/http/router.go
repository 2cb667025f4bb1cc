package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"e2ee-msgcore/internal/service"
	obsmw "e2ee-msgcore/internal/observability/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	CORSOrigins []string
	RateLimit   int // requests per minute per IP, 0 disables
}

func NewRouter(svc *service.Service, validator *BearerValidator, cfg RouterConfig) *chi.Mux {
	h := &Handler{svc: svc}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)

	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))
	}

	corsOpts := cors.Options{
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}
	if origins := explicitOrigins(cfg.CORSOrigins); len(origins) > 0 {
		corsOpts.AllowedOrigins = origins
		corsOpts.AllowCredentials = true
	} else {
		// Browsers reject Allow-Credentials together with a wildcard origin,
		// so the permissive fallback stays credential-free.
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(validator.Middleware)

		r.Post("/devices", h.publishDevice)
		r.Post("/devices/pairing-code", h.issuePairingCode)
		r.Post("/devices/claim-pairing", h.claimPairing)

		r.Post("/keys/users", h.keysForUsers)

		r.Route("/conversations/{conversationID}", func(r chi.Router) {
			r.Get("/keys", h.keysForConversation)
			r.Post("/messages", h.submitEnvelope)
			r.Get("/messages", h.listEnvelopes)
		})

		r.Delete("/messages/{messageID}", h.deleteEnvelope)
	})

	return r
}

func explicitOrigins(origins []string) []string {
	var out []string
	for _, o := range origins {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
