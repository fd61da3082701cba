package pg

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type tokenRepo struct{ pool *pgxpool.Pool }

const tokenCols = `id, rotation_id, user_id, token_hash, issued_at, expires_at,
	used_at, superseded_by, revoked_at`

func scanToken(row interface{ Scan(...any) error }) (*repository.RefreshToken, error) {
	var t repository.RefreshToken
	err := row.Scan(
		&t.ID, &t.RotationID, &t.UserID, &t.TokenHash, &t.IssuedAt, &t.ExpiresAt,
		&t.UsedAt, &t.SupersededBy, &t.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepo) Create(ctx context.Context, in repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	rotationID := in.RotationID
	if rotationID == "" {
		rotationID = uuid.NewString()
	}
	q := `
		INSERT INTO refresh_tokens (id, rotation_id, user_id, token_hash, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, now(), now() + $5)
		RETURNING ` + tokenCols
	t, err := scanToken(r.pool.QueryRow(ctx, q,
		uuid.NewString(), rotationID, in.UserID, in.TokenHash, in.TTL))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return t, nil
}

func (r *tokenRepo) GetByHash(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	q := `SELECT ` + tokenCols + ` FROM refresh_tokens WHERE token_hash = $1`
	t, err := scanToken(r.pool.QueryRow(ctx, q, tokenHash))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return t, nil
}

// Rotate marca el token viejo como usado e inserta el sucesor en una sola
// transacción. El check-and-set es el UPDATE condicional sobre used_at IS
// NULL: de dos rotaciones concurrentes sobre el mismo token, exactamente una
// ve RowsAffected=1; la otra recibe ErrAlreadyRotated y no inserta nada.
func (r *tokenRepo) Rotate(ctx context.Context, oldID string, in repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	newID := uuid.NewString()

	ct, err := tx.Exec(ctx, `
		UPDATE refresh_tokens
		SET used_at = now(), superseded_by = $2
		WHERE id = $1 AND used_at IS NULL AND revoked_at IS NULL`,
		oldID, newID)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, repository.ErrAlreadyRotated
	}

	q := `
		INSERT INTO refresh_tokens (id, rotation_id, user_id, token_hash, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, now(), now() + $5)
		RETURNING ` + tokenCols
	t, err := scanToken(tx.QueryRow(ctx, q,
		newID, in.RotationID, in.UserID, in.TokenHash, in.TTL))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tokenRepo) RevokeChain(ctx context.Context, rotationID string) (int, error) {
	ct, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE rotation_id = $1 AND revoked_at IS NULL`,
		rotationID)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}

func (r *tokenRepo) RevokeAllByUser(ctx context.Context, userID string) (int, error) {
	ct, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE user_id = $1 AND revoked_at IS NULL`,
		userID)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}

func (r *tokenRepo) ListByUser(ctx context.Context, userID string, limit int) ([]repository.RefreshToken, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + tokenCols + ` FROM refresh_tokens
		WHERE user_id = $1 ORDER BY issued_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.RefreshToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *tokenRepo) PurgeExpired(ctx context.Context, keepFor time.Duration) (int, error) {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < now() - $1`, keepFor)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}
