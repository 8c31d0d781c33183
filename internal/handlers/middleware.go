package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/VladimirMonin/students-api-411/internal/app"
	"github.com/VladimirMonin/students-api-411/internal/metrics"
)

// AuthMiddleware runs the API key gate before a handler. Read endpoints
// need any valid key, mutating endpoints additionally need the admin role.
type AuthMiddleware struct {
	auth *app.Auth
}

func NewAuthMiddleware(auth *app.Auth) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) RequireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.auth.Authenticate(r)
		switch {
		case errors.Is(err, app.ErrAPIKeyMissing):
			metrics.AuthFailuresTotal.WithLabelValues("missing_key").Inc()
			writeError(w, http.StatusUnauthorized, "Требуется API ключ")
			return
		case errors.Is(err, app.ErrAPIKeyInvalid):
			metrics.AuthFailuresTotal.WithLabelValues("invalid_key").Inc()
			writeError(w, http.StatusUnauthorized, "Недействительный API ключ")
			return
		case err != nil:
			logger.Error.Printf("Auth check failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Не удалось проверить API ключ")
			return
		}

		if principal != nil {
			r = r.WithContext(app.WithPrincipal(r.Context(), principal))
		}
		next(w, r)
	}
}

func (m *AuthMiddleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireKey(func(w http.ResponseWriter, r *http.Request) {
		if m.auth.Enabled() {
			principal, ok := app.PrincipalFromContext(r.Context())
			if !ok || !principal.IsAdmin() {
				metrics.AuthFailuresTotal.WithLabelValues("not_admin").Inc()
				writeError(w, http.StatusForbidden, "Требуются права администратора")
				return
			}
		}
		next(w, r)
	})
}

// WithMetrics observes request duration labeled with the final status code.
func WithMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}
		metrics.APIRequestDuration.WithLabelValues(
			path,
			r.Method,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
