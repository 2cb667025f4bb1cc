package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"e2ee-msgcore/internal/observability/metrics"
	obsmw "e2ee-msgcore/internal/observability/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Actor is the authenticated caller as asserted by the external session
// service's token. The core trusts the identity once the signature checks
// out, but still re-verifies conversation authorization itself.
type Actor struct {
	UserID   uuid.UUID
	DeviceID string
}

type BearerValidator struct {
	secret []byte
	issuer string
}

func NewBearerValidator(secret, issuer string) *BearerValidator {
	return &BearerValidator{secret: []byte(secret), issuer: issuer}
}

func (v *BearerValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := obsmw.RequestIDFromContext(r.Context())
		traceID := obsmw.TraceIDFromContext(r.Context())

		raw := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			metrics.AuthenticationAttemptsTotal.WithLabelValues("failure").Inc()
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			slog.Warn("auth missing bearer", "request_id", reqID, "trace_id", traceID)
			return
		}
		tokStr := strings.TrimSpace(raw[len("Bearer "):])

		token, err := jwt.Parse(tokStr, func(token *jwt.Token) (interface{}, error) {
			// HS* only; anything else is an attack on the verification path.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %T", token.Method)
			}
			return v.secret, nil
		})
		if err != nil || !token.Valid {
			metrics.AuthenticationAttemptsTotal.WithLabelValues("failure").Inc()
			http.Error(w, "invalid token", http.StatusUnauthorized)
			slog.Warn("auth invalid token", "error", err, "request_id", reqID, "trace_id", traceID)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			metrics.AuthenticationAttemptsTotal.WithLabelValues("failure").Inc()
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			slog.Warn("auth invalid claims", "request_id", reqID, "trace_id", traceID)
			return
		}
		if iss, _ := claims["iss"].(string); iss != "" && iss != v.issuer {
			metrics.AuthenticationAttemptsTotal.WithLabelValues("failure").Inc()
			http.Error(w, "issuer mismatch", http.StatusUnauthorized)
			slog.Warn("auth issuer mismatch", "issuer", iss, "request_id", reqID, "trace_id", traceID)
			return
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			metrics.AuthenticationAttemptsTotal.WithLabelValues("failure").Inc()
			http.Error(w, "invalid subject", http.StatusUnauthorized)
			slog.Warn("auth invalid subject", "request_id", reqID, "trace_id", traceID)
			return
		}
		deviceID, _ := claims["deviceId"].(string)

		metrics.AuthenticationAttemptsTotal.WithLabelValues("success").Inc()
		ctx := contextWithActor(r.Context(), Actor{UserID: userID, DeviceID: deviceID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type actorKey struct{}

func contextWithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
