package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type idempotencyRepo struct{ pool *pgxpool.Pool }

const idemCols = `key, principal_id, endpoint, status_code, response_body,
	created_at, expires_at, completed_at`

func scanIdem(row interface{ Scan(...any) error }) (*repository.IdempotencyRecord, error) {
	var rec repository.IdempotencyRecord
	err := row.Scan(
		&rec.Key, &rec.PrincipalID, &rec.Endpoint, &rec.StatusCode, &rec.ResponseBody,
		&rec.CreatedAt, &rec.ExpiresAt, &rec.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Reserve hace el insert-if-absent atómico sobre la primary key. Una fila
// vencida cuenta como ausente: se pisa con la reserva nueva en el mismo
// statement para no necesitar un sweep previo a cada request.
func (r *idempotencyRepo) Reserve(ctx context.Context, key, principalID, endpoint string, ttl time.Duration) (*repository.IdempotencyRecord, bool, error) {
	q := `
		INSERT INTO idempotency_keys (key, principal_id, endpoint, status_code, response_body, expires_at)
		VALUES ($1, $2, $3, 0, NULL, now() + $4)
		ON CONFLICT (key) DO UPDATE
			SET principal_id = EXCLUDED.principal_id,
			    endpoint     = EXCLUDED.endpoint,
			    status_code  = 0,
			    response_body = NULL,
			    created_at   = now(),
			    expires_at   = EXCLUDED.expires_at,
			    completed_at = NULL
			WHERE idempotency_keys.expires_at <= now()
		RETURNING ` + idemCols

	rec, err := scanIdem(r.pool.QueryRow(ctx, q, key, principalID, endpoint, ttl))
	if err == nil {
		// Insert o takeover de fila vencida: la reserva es nuestra.
		return rec, true, nil
	}
	if err := mapNoRows(err); err != repository.ErrNotFound {
		return nil, false, err
	}

	// Conflicto con una fila vigente: devolver la existente.
	q = `SELECT ` + idemCols + ` FROM idempotency_keys WHERE key = $1 AND expires_at > now()`
	rec, err = scanIdem(r.pool.QueryRow(ctx, q, key))
	if err != nil {
		// La fila pudo vencer o borrarse entre ambos statements; el caller
		// reintenta el request completo.
		return nil, false, mapNoRows(err)
	}
	return rec, false, nil
}

func (r *idempotencyRepo) Complete(ctx context.Context, key string, statusCode int, body []byte) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE idempotency_keys
		SET status_code = $2, response_body = $3, completed_at = now()
		WHERE key = $1`,
		key, statusCode, body)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *idempotencyRepo) Release(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE key = $1 AND completed_at IS NULL`, key)
	return err
}

func (r *idempotencyRepo) DeleteExpired(ctx context.Context) (int, error) {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}
