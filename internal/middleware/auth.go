package middleware

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=middleware_test

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/gymtrack/internal/auth"
	"github.com/2beens/gymtrack/internal/telemetry/tracing"
)

const TokenHeader = "X-GYMTRACK-TOKEN"

type loginChecker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}

type protectedRoute struct {
	method     string
	pathPrefix string
}

type AuthMiddlewareHandler struct {
	loginChecker    loginChecker
	protectedRoutes []protectedRoute
}

// NewAuthMiddlewareHandler builds the auth middleware. Tracker, history and
// stats work anonymously (local history only); the token, when present, is
// put into the request context so the remote store can be reached. Routes
// touching the remote history directly always require a valid login.
func NewAuthMiddlewareHandler(loginChecker loginChecker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		loginChecker: loginChecker,
		protectedRoutes: []protectedRoute{
			{method: http.MethodDelete, pathPrefix: "/sessions/"},
			{method: http.MethodPost, pathPrefix: "/sessions/sync"},
			{method: http.MethodPost, pathPrefix: "/a/logout"},
		},
	}
}

func (h *AuthMiddlewareHandler) isProtected(r *http.Request) bool {
	for _, route := range h.protectedRoutes {
		if r.Method == route.method && strings.HasPrefix(r.URL.Path, route.pathPrefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			authToken := r.Header.Get(TokenHeader)
			if authToken != "" {
				r = r.WithContext(auth.ContextWithToken(r.Context(), authToken))
			}

			if !h.isProtected(r) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			isLogged, err := h.loginChecker.IsLogged(ctx, authToken)
			if err != nil {
				log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "check-logged-err")
				span.RecordError(err)
				return
			}
			if !isLogged {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
