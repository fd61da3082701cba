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

type announcementRepo struct{ pool *pgxpool.Pool }

const announcementCols = `id, tenant_id, local_church_id, title, body, min_role,
	created_by, created_at, expires_at`

func scanAnnouncement(row interface{ Scan(...any) error }) (*repository.Announcement, error) {
	var a repository.Announcement
	var minRole string
	err := row.Scan(
		&a.ID, &a.TenantID, &a.LocalChurchID, &a.Title, &a.Body, &minRole,
		&a.CreatedBy, &a.CreatedAt, &a.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	a.MinRole = domain.Role(minRole)
	return &a, nil
}

// List filtra en SQL por vigencia e iglesia; el corte por min_role se hace en
// memoria porque el ranking de roles vive en domain y no queremos duplicarlo
// en la base.
func (r *announcementRepo) List(ctx context.Context, scope authz.Scope, churchID string, viewerRole domain.Role, limit int) ([]repository.Announcement, error) {
	frag, scopeArgs := scope.SQL(2)
	if limit <= 0 {
		limit = 50
	}
	q := fmt.Sprintf(`
		SELECT %s FROM announcements
		WHERE (local_church_id IS NULL OR local_church_id = $1)
		  AND %s
		  AND (expires_at IS NULL OR expires_at > now())
		ORDER BY created_at DESC`, announcementCols, frag)

	rows, err := r.pool.Query(ctx, q, append([]any{churchID}, scopeArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		if viewerRole.Rank() < a.MinRole.Rank() {
			continue
		}
		out = append(out, *a)
		if len(out) >= limit {
			break
		}
	}
	return out, rows.Err()
}

func (r *announcementRepo) Create(ctx context.Context, in repository.CreateAnnouncementInput) (*repository.Announcement, error) {
	minRole := in.MinRole
	if minRole == "" {
		minRole = domain.RoleMember
	}
	q := `
		INSERT INTO announcements (id, tenant_id, local_church_id, title, body, min_role, created_by, expires_at)
		VALUES ($1, $2, NULLIF($3,''), $4, $5, $6, $7, $8)
		RETURNING ` + announcementCols
	a, err := scanAnnouncement(r.pool.QueryRow(ctx, q,
		uuid.NewString(), in.TenantID, in.LocalChurchID,
		strings.TrimSpace(in.Title), in.Body, string(minRole), in.CreatedBy, in.ExpiresAt))
	if err != nil {
		return nil, err
	}
	return a, nil
}
