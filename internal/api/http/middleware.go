package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"martilhaven-backend/internal/config"
	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/security"

	"github.com/gorilla/mux"
)

type contextKey int

const (
	actorKey contextKey = iota
	tokenKey
	requestLogKey
)

// requestLog is shared between the logging and auth middleware so the request line
// carries the caller resolved further down the chain.
type requestLog struct {
	actor *domain.Actor
}

func noteActor(ctx context.Context, actor domain.Actor) {
	if rl, ok := ctx.Value(requestLogKey).(*requestLog); ok {
		rl.actor = &actor
	}
}

// ActorFromContext returns the authenticated caller attached by the auth middleware
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

func rawTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		return route.GetName()
	}
	return ""
}

type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

// Middleware authenticates and authorizes each request against the route security table.
// Public routes still pick up a valid bearer token so listings can widen for staff.
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rule := config.GetEndpointSecurity(routeName(r))
		token := extractToken(r)

		if rule.Level == config.SecurityPublic {
			if token != "" {
				if claims, err := m.tokenManager.ValidateToken(token); err == nil && claims.Type == security.TokenTypeAccess {
					noteActor(r.Context(), claims.Actor())
					r = r.WithContext(context.WithValue(r.Context(), actorKey, claims.Actor()))
				}
			}
			next.ServeHTTP(w, r)
			return
		}

		if token == "" {
			respondWithError(w, domain.NewUnauthorizedError("authorization token is not provided"))
			return
		}
		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			respondWithError(w, domain.NewUnauthorizedError("invalid token: "+err.Error()))
			return
		}
		noteActor(r.Context(), claims.Actor())
		if err := checkSecurityLevel(rule.Level, claims); err != nil {
			respondWithError(w, err)
			return
		}
		if !rule.Allows(claims.Role) {
			respondWithError(w, domain.NewForbiddenError("role "+string(claims.Role)+" may not call this endpoint"))
			return
		}
		logger.DebugContext(r.Context(), "Request authorized", "route", routeName(r), "actorID", claims.UserID)

		ctx := context.WithValue(r.Context(), actorKey, claims.Actor())
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	return strings.TrimSpace(token)
}

func checkSecurityLevel(level config.SecurityLevel, claims *security.UserClaims) error {
	switch level {
	case config.SecurityAccess:
		if claims.Type != security.TokenTypeAccess {
			return domain.NewUnauthorizedError("access token required")
		}
	case config.SecurityRefresh:
		if claims.Type != security.TokenTypeRefresh {
			return domain.NewUnauthorizedError("refresh token required")
		}
	}
	return nil
}

// LoggingMiddleware logs every routed request with its status and latency
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		rl := &requestLog{}
		next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), requestLogKey, rl)))

		var l *slog.Logger
		if rl.actor != nil {
			l = logger.WithActor(rl.actor.ID, string(rl.actor.Role))
		}
		logger.HTTPRequest(l, r.Method, r.URL.Path, routeName(r), rw.statusCode, time.Since(start))
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *loggingResponseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
