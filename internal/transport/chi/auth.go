package chi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gridex/internal/domain"
	gen "github.com/kailas-cloud/gridex/internal/transport/generated"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens and
// scopes the request to the key's tenant. A key mapped to the zero tenant
// sees every row. If apiKeys is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys map[string]domain.Tenant) func(http.Handler) http.Handler {
	validKeys := make(map[string]domain.Tenant, len(apiKeys))
	for k, t := range apiKeys {
		if k != "" {
			validKeys[k] = t
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled: pass everything through
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, gen.ErrorResponseCodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					gen.ErrorResponseCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			tenant, ok := validKeys[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, gen.ErrorResponseCodeUnauthorized, "invalid api key")
				return
			}

			if !tenant.IsZero() {
				annotate(r.Context(), zap.String("tenant", tenant.String()))
			}
			next.ServeHTTP(w, r.WithContext(domain.ContextWithTenant(r.Context(), tenant)))
		})
	}
}
