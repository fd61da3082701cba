package middlewares

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/http/errors"
	jwtx "github.com/dropDatabas3/shepherd/internal/jwt"
)

// =================================================================================
// AUTHENTICATION / AUTHORIZATION MIDDLEWARES
// =================================================================================

// WithAuth valida Authorization: Bearer <JWT> y guarda el Principal en el
// contexto. Si el token es inválido o no está presente, responde 401.
func WithAuth(issuer *jwtx.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, r, errors.ErrAuthenticationRequired)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			p, err := issuer.VerifyAccess(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				if stderrors.Is(err, jwtx.ErrExpired) {
					errors.WriteError(w, r, errors.ErrAccessTokenExpired)
					return
				}
				errors.WriteError(w, r, errors.ErrAccessTokenInvalid)
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole corta con 403 a los principals por debajo del rol mínimo.
// Debe usarse después de WithAuth; sin principal responde 401.
func RequireRole(min domain.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				errors.WriteError(w, r, errors.ErrAuthenticationRequired)
				return
			}
			if !authz.HasMinRole(p.Role, min) {
				errors.WriteError(w, r, errors.ErrInsufficientPermissions)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
