package repository

import (
	"context"
	"time"
)

// RefreshToken es un registro de refresh token. Todos los tokens descendientes
// de un mismo login comparten RotationID (la cadena); revocar la cadena es
// revocar por ese ID. Solo se guarda el hash SHA-256 del token opaco.
type RefreshToken struct {
	ID           string
	RotationID   string
	UserID       string
	TokenHash    string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	UsedAt       *time.Time
	SupersededBy *string
	RevokedAt    *time.Time
}

// CreateRefreshTokenInput contiene los datos para crear un registro.
// RotationID vacío inicia una cadena nueva (login).
type CreateRefreshTokenInput struct {
	UserID     string
	TokenHash  string
	RotationID string
	TTL        time.Duration
}

// TokenRepository define la persistencia de refresh tokens.
type TokenRepository interface {
	// Create inserta un registro nuevo (login: cadena nueva).
	Create(ctx context.Context, in CreateRefreshTokenInput) (*RefreshToken, error)

	// GetByHash busca por hash del token. Retorna ErrNotFound si no existe.
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// Rotate marca el registro viejo como usado+superseded e inserta el nuevo
	// en una sola transacción. El check-and-set es sobre used_at IS NULL:
	// si otro request ya rotó este token retorna ErrAlreadyRotated y no
	// inserta nada.
	Rotate(ctx context.Context, oldID string, in CreateRefreshTokenInput) (*RefreshToken, error)

	// RevokeChain revoca todos los registros de la cadena. Idempotente;
	// devuelve cuántos registros pasaron a revocados.
	RevokeChain(ctx context.Context, rotationID string) (int, error)

	// RevokeAllByUser revoca todas las cadenas de un usuario.
	RevokeAllByUser(ctx context.Context, userID string) (int, error)

	// ListByUser lista los registros de un usuario, más recientes primero.
	// Para el panel admin de sesiones.
	ListByUser(ctx context.Context, userID string, limit int) ([]RefreshToken, error)

	// PurgeExpired borra registros vencidos hace más de keepFor (janitor).
	PurgeExpired(ctx context.Context, keepFor time.Duration) (int, error)
}
