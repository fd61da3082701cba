package middlewares

import (
	"context"

	"github.com/dropDatabas3/shepherd/internal/domain"
)

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	// ctxPrincipalKey guarda el Principal resuelto del access token
	ctxPrincipalKey ctxKey = "principal"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// =================================================================================
// CONTEXT SETTERS (internos, usados por middlewares)
// =================================================================================

// WithPrincipal inyecta el principal en el contexto.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// setRequestID inyecta el request ID en el contexto (interno).
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// =================================================================================
// CONTEXT GETTERS (públicos, usados por controllers/services)
// =================================================================================

// GetPrincipal obtiene el principal del contexto.
// ok=false significa que WithAuth no corrió o el token no validó.
func GetPrincipal(ctx context.Context) (domain.Principal, bool) {
	if v := ctx.Value(ctxPrincipalKey); v != nil {
		if p, ok := v.(domain.Principal); ok {
			return p, true
		}
	}
	return domain.Principal{}, false
}

// MustGetPrincipal obtiene el principal o hace panic.
// Usar solo en rutas donde WithAuth SIEMPRE se aplica.
func MustGetPrincipal(ctx context.Context) domain.Principal {
	p, ok := GetPrincipal(ctx)
	if !ok {
		panic("middlewares: no principal in context")
	}
	return p
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
