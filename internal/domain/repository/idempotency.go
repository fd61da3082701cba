package repository

import (
	"context"
	"time"
)

// IdempotencyRecord es la reserva/respuesta de un request idempotente.
// Key = sha256(principalId, endpoint, clientRequestId). CompletedAt nil
// significa que el primer request sigue en vuelo.
type IdempotencyRecord struct {
	Key          string
	PrincipalID  string
	Endpoint     string
	StatusCode   int
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
	CompletedAt  *time.Time
}

// Completed reporta si el registro ya tiene respuesta persistida.
func (r *IdempotencyRecord) Completed() bool {
	return r.CompletedAt != nil
}

// IdempotencyRepository define la persistencia de claves de idempotencia.
// Las lecturas ignoran filas vencidas: después del TTL la clave se trata
// como ausente.
type IdempotencyRepository interface {
	// Reserve inserta una reserva pendiente si la clave no existe
	// (insert-if-absent atómico). Si ya existía y no venció, devuelve el
	// registro existente y reserved=false.
	Reserve(ctx context.Context, key, principalID, endpoint string, ttl time.Duration) (rec *IdempotencyRecord, reserved bool, err error)

	// Complete persiste status+body sobre una reserva.
	Complete(ctx context.Context, key string, statusCode int, body []byte) error

	// Release borra una reserva cuyo handler falló por infraestructura,
	// para que un retry pueda ejecutar de nuevo.
	Release(ctx context.Context, key string) error

	// DeleteExpired barre registros vencidos (janitor).
	DeleteExpired(ctx context.Context) (int, error)
}
