package middleware

import (
	"net/http"
	"strings"

	"github.com/hongminglow/tenantauth/internal/auth"
	"github.com/hongminglow/tenantauth/internal/http/respond"
	"github.com/hongminglow/tenantauth/internal/observability"
)

const bearerPrefix = "bearer "

// TokenVerifier turns a raw bearer token into an identity.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// AttachIdentity verifies the bearer token, if any, and stores the identity on the
// request context. A missing or invalid token is not rejected here; the request
// continues without an identity and role gates decide.
func AttachIdentity(verifier TokenVerifier, log *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			id, err := verifier.Verify(raw)
			if err != nil {
				log.WithContext(r.Context()).Debug("bearer token rejected", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole passes requests whose identity holds any of allowed. Requests
// without an identity get 401; identities holding none of the roles get 403.
func RequireRole(metrics *observability.Metrics, allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				denied(metrics, http.StatusUnauthorized)
				respond.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !id.HasAnyRole(allowed...) {
				denied(metrics, http.StatusForbidden)
				respond.Error(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denied(m *observability.Metrics, status int) {
	if m == nil {
		return
	}
	m.AuthzDenied.WithLabelValues(http.StatusText(status)).Inc()
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
