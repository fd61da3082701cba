package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type firstTimerRepo struct{ pool *pgxpool.Pool }

const ftCols = `id, local_church_id, member_id, assigned_vip_id, gospel_shared,
	notes, created_at`

func scanFirstTimer(row interface{ Scan(...any) error }) (*repository.FirstTimer, error) {
	var ft repository.FirstTimer
	err := row.Scan(
		&ft.ID, &ft.LocalChurchID, &ft.MemberID, &ft.AssignedVipID,
		&ft.GospelShared, &ft.Notes, &ft.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

// Create da de alta al miembro y su ficha de seguimiento en una transacción:
// nunca queda una ficha apuntando a un usuario que no se insertó ni al revés.
func (r *firstTimerRepo) Create(ctx context.Context, user repository.CreateUserInput, in repository.CreateFirstTimerInput) (*repository.FirstTimer, *repository.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	vis := user.ProfileVisibility
	if vis == "" {
		vis = domain.VisibilityMembers
	}
	u, err := scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (id, tenant_id, local_church_id, email, name, phone, role,
			password_hash, profile_visibility, allow_contact, is_new_believer)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, NULLIF($6,''), $7, $8, $9, $10, $11)
		RETURNING `+userCols,
		uuid.NewString(), user.TenantID, user.LocalChurchID,
		strings.ToLower(user.Email), user.Name, user.Phone, string(user.Role),
		user.PasswordHash, string(vis), user.AllowContact, user.IsNewBeliever,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, repository.ErrConflict
		}
		return nil, nil, err
	}

	ft, err := scanFirstTimer(tx.QueryRow(ctx, `
		INSERT INTO first_timers (id, local_church_id, member_id, assigned_vip_id, gospel_shared, notes)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6)
		RETURNING `+ftCols,
		uuid.NewString(), in.LocalChurchID, u.ID, in.AssignedVipID, in.GospelShared, in.Notes))
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return ft, u, nil
}

func (r *firstTimerRepo) List(ctx context.Context, scope authz.Scope, limit int) ([]repository.FirstTimer, error) {
	frag, args := scope.SQL(1)
	if limit <= 0 {
		limit = 50
	}
	q := fmt.Sprintf(`
		SELECT %s FROM first_timers WHERE %s
		ORDER BY created_at DESC LIMIT %d`, ftCols, frag, limit)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.FirstTimer
	for rows.Next() {
		ft, err := scanFirstTimer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ft)
	}
	return out, rows.Err()
}

func (r *firstTimerRepo) Get(ctx context.Context, scope authz.Scope, id string) (*repository.FirstTimer, error) {
	frag, args := scope.SQL(2)
	q := fmt.Sprintf(`SELECT %s FROM first_timers WHERE id = $1 AND %s`, ftCols, frag)
	ft, err := scanFirstTimer(r.pool.QueryRow(ctx, q, append([]any{id}, args...)...))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return ft, nil
}

func (r *firstTimerRepo) Update(ctx context.Context, scope authz.Scope, id string, in repository.UpdateFirstTimerInput) (*repository.FirstTimer, error) {
	frag, scopeArgs := scope.SQL(5)
	q := fmt.Sprintf(`
		UPDATE first_timers SET
			assigned_vip_id = COALESCE($2, assigned_vip_id),
			gospel_shared   = COALESCE($3, gospel_shared),
			notes           = COALESCE($4, notes)
		WHERE id = $1 AND %s
		RETURNING %s`, frag, ftCols)

	args := append([]any{id, in.AssignedVipID, in.GospelShared, in.Notes}, scopeArgs...)
	ft, err := scanFirstTimer(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return ft, nil
}
