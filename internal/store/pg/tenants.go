package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type tenantRepo struct{ pool *pgxpool.Pool }

func (r *tenantRepo) GetTenant(ctx context.Context, id string) (*repository.Tenant, error) {
	var t repository.Tenant
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, created_at FROM tenants WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &t, nil
}

func (r *tenantRepo) GetTenantBySlug(ctx context.Context, slug string) (*repository.Tenant, error) {
	var t repository.Tenant
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, created_at FROM tenants WHERE slug = $1`, slug).
		Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &t, nil
}

func (r *tenantRepo) ListTenants(ctx context.Context) ([]repository.TenantStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.name, t.slug, t.created_at,
			(SELECT count(*) FROM local_churches c WHERE c.tenant_id = t.id),
			(SELECT count(*) FROM users u WHERE u.tenant_id = t.id)
		FROM tenants t
		ORDER BY t.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.TenantStats
	for rows.Next() {
		var s repository.TenantStats
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt, &s.ChurchCount, &s.UserCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *tenantRepo) ListChurches(ctx context.Context, tenantID string) ([]repository.LocalChurch, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, name, slug, created_at FROM local_churches WHERE tenant_id = $1 ORDER BY name`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.LocalChurch
	for rows.Next() {
		var c repository.LocalChurch
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *tenantRepo) ChurchIDs(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM local_churches WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *tenantRepo) CreateTenant(ctx context.Context, in repository.CreateTenantInput) (*repository.Tenant, error) {
	var t repository.Tenant
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tenants (id, name, slug) VALUES ($1, $2, $3)
		 RETURNING id, name, slug, created_at`,
		uuid.NewString(), in.Name, in.Slug).
		Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepo) CreateChurch(ctx context.Context, in repository.CreateChurchInput) (*repository.LocalChurch, error) {
	var c repository.LocalChurch
	err := r.pool.QueryRow(ctx,
		`INSERT INTO local_churches (id, tenant_id, name, slug) VALUES ($1, $2, $3, $4)
		 RETURNING id, tenant_id, name, slug, created_at`,
		uuid.NewString(), in.TenantID, in.Name, in.Slug).
		Scan(&c.ID, &c.TenantID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &c, nil
}
