package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type groupRepo struct{ pool *pgxpool.Pool }

const groupCols = `id, local_church_id, leader_id, name, description, created_at`

func scanGroup(row interface{ Scan(...any) error }) (*repository.LifeGroup, error) {
	var g repository.LifeGroup
	err := row.Scan(&g.ID, &g.LocalChurchID, &g.LeaderID, &g.Name, &g.Description, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) List(ctx context.Context, scope authz.Scope, limit int) ([]repository.LifeGroup, error) {
	frag, args := scope.SQL(1)
	if limit <= 0 {
		limit = 50
	}
	q := fmt.Sprintf(`SELECT %s FROM life_groups WHERE %s ORDER BY name LIMIT %d`,
		groupCols, frag, limit)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.LifeGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (r *groupRepo) Get(ctx context.Context, scope authz.Scope, groupID string) (*repository.LifeGroup, error) {
	frag, args := scope.SQL(2)
	q := fmt.Sprintf(`SELECT %s FROM life_groups WHERE id = $1 AND %s`, groupCols, frag)
	g, err := scanGroup(r.pool.QueryRow(ctx, q, append([]any{groupID}, args...)...))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return g, nil
}

func (r *groupRepo) GetByID(ctx context.Context, groupID string) (*repository.LifeGroup, error) {
	q := `SELECT ` + groupCols + ` FROM life_groups WHERE id = $1`
	g, err := scanGroup(r.pool.QueryRow(ctx, q, groupID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return g, nil
}

func (r *groupRepo) CreateGroup(ctx context.Context, in repository.CreateGroupInput) (*repository.LifeGroup, error) {
	q := `
		INSERT INTO life_groups (id, local_church_id, leader_id, name, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + groupCols
	g, err := scanGroup(r.pool.QueryRow(ctx, q,
		uuid.NewString(), in.LocalChurchID, in.LeaderID, in.Name, in.Description))
	if err != nil {
		return nil, err
	}
	return g, nil
}

const requestCols = `id, group_id, user_id, status, decided_by, decided_at, created_at`

func scanRequest(row interface{ Scan(...any) error }) (*repository.GroupJoinRequest, error) {
	var req repository.GroupJoinRequest
	var status string
	err := row.Scan(&req.ID, &req.GroupID, &req.UserID, &status, &req.DecidedBy, &req.DecidedAt, &req.CreatedAt)
	if err != nil {
		return nil, err
	}
	req.Status = repository.RequestStatus(status)
	return &req, nil
}

// CreateJoinRequest: el índice único parcial (group_id, user_id) WHERE
// status='PENDING' garantiza a lo sumo una solicitud abierta por usuario.
func (r *groupRepo) CreateJoinRequest(ctx context.Context, groupID, userID string) (*repository.GroupJoinRequest, bool, error) {
	// Miembro actual: conflicto de dominio, no "duplicate".
	var isMember bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM group_memberships WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID).Scan(&isMember)
	if err != nil {
		return nil, false, err
	}
	if isMember {
		return nil, false, repository.ErrConflict
	}

	var req *repository.GroupJoinRequest
	req, err = scanRequest(r.pool.QueryRow(ctx, `
		INSERT INTO group_join_requests (id, group_id, user_id, status)
		VALUES ($1, $2, $3, 'PENDING')
		RETURNING `+requestCols,
		uuid.NewString(), groupID, userID))
	if err == nil {
		return req, true, nil
	}
	if !isUniqueViolation(err) {
		return nil, false, err
	}

	req, err = scanRequest(r.pool.QueryRow(ctx, `
		SELECT `+requestCols+` FROM group_join_requests
		WHERE group_id = $1 AND user_id = $2 AND status = 'PENDING'`,
		groupID, userID))
	if err != nil {
		return nil, false, mapNoRows(err)
	}
	return req, false, nil
}

func (r *groupRepo) GetJoinRequest(ctx context.Context, requestID string) (*repository.GroupJoinRequest, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+requestCols+` FROM group_join_requests WHERE id = $1`, requestID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return req, nil
}

// Approve flipea la solicitud y crea la membresía en una transacción: quedan
// ambas o ninguna. El UPDATE condicional sobre status='PENDING' serializa
// decisiones concurrentes.
func (r *groupRepo) Approve(ctx context.Context, requestID, decidedBy string) (*repository.GroupMembership, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var groupID, userID string
	err = tx.QueryRow(ctx, `
		UPDATE group_join_requests
		SET status = 'APPROVED', decided_by = $2, decided_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING group_id, user_id`,
		requestID, decidedBy).Scan(&groupID, &userID)
	if err != nil {
		if mapNoRows(err) == repository.ErrNotFound {
			// La fila existe pero ya no está PENDING, o no existe. El caller
			// ya resolvió la solicitud con GetJoinRequest; acá el único caso
			// restante es la decisión repetida.
			return nil, repository.ErrAlreadyDecided
		}
		return nil, err
	}

	var m repository.GroupMembership
	err = tx.QueryRow(ctx, `
		INSERT INTO group_memberships (id, group_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, group_id, user_id, joined_at`,
		uuid.NewString(), groupID, userID).
		Scan(&m.ID, &m.GroupID, &m.UserID, &m.JoinedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *groupRepo) Reject(ctx context.Context, requestID, decidedBy string) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE group_join_requests
		SET status = 'REJECTED', decided_by = $2, decided_at = now()
		WHERE id = $1 AND status = 'PENDING'`,
		requestID, decidedBy)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrAlreadyDecided
	}
	return nil
}

func (r *groupRepo) ListMembers(ctx context.Context, groupID string) ([]repository.GroupMembership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, group_id, user_id, joined_at FROM group_memberships
		WHERE group_id = $1 ORDER BY joined_at`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.GroupMembership
	for rows.Next() {
		var m repository.GroupMembership
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
