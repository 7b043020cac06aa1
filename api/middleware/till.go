package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/shopmasterhq/shopmaster-backend/pkg/logger"
)

const tillSessionHeader = "X-Till-Session"

type contextKey string

const ctxTillSession contextKey = "till_session"

// TillSession pins every request to one till's cart session. Clients without
// a session header get a fresh id back and are expected to replay it.
func TillSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(tillSessionHeader)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(tillSessionHeader, sessionID)

			ctx := context.WithValue(r.Context(), ctxTillSession, sessionID)
			if logg != nil {
				ctx = logg.WithCheckoutSession(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithTillSession injects a session id directly, bypassing the header flow.
func WithTillSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxTillSession, sessionID)
}

// TillSessionFromContext returns the request's till session id.
func TillSessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTillSession).(string); ok {
		return v
	}
	return ""
}
