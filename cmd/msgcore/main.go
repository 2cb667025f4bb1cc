package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"e2ee-msgcore/internal/authz"
	"e2ee-msgcore/internal/config"
	"e2ee-msgcore/internal/db"
	"e2ee-msgcore/internal/membership"
	"e2ee-msgcore/internal/notify"
	"e2ee-msgcore/internal/observability/logging"
	"e2ee-msgcore/internal/observability/metrics"
	"e2ee-msgcore/internal/service"
	"e2ee-msgcore/internal/store"
	"e2ee-msgcore/internal/tokens"
	httptransport "e2ee-msgcore/internal/transport/http"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "msgcore",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	metrics.MustRegister("msgcore")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		log.Fatalf("gorm open: %v", err)
	}

	st := store.New(gdb)
	if err := st.AutoMigrate(context.Background()); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	var assistantID uuid.UUID
	if cfg.AssistantUserID != "" {
		assistantID, err = uuid.Parse(cfg.AssistantUserID)
		if err != nil {
			log.Fatalf("invalid ASSISTANT_USER_ID: %v", err)
		}
	}

	members := membership.NewClient(cfg.MembershipURL)
	gate := authz.NewGate(members)
	codes := tokens.New(1 * time.Minute)
	defer codes.Close()

	svc := service.New(st, gate, members, codes, notify.LogSink{}, service.Options{
		AssistantUserID: assistantID,
		PairingCodeTTL:  cfg.PairingCodeTTL,
	})

	validator := httptransport.NewBearerValidator(cfg.JWTSecret, cfg.Issuer)
	router := httptransport.NewRouter(svc, validator, httptransport.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("msgcore listening on %s", cfg.Addr)
	log.Fatal(srv.ListenAndServe())
}
