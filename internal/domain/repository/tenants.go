package repository

import (
	"context"
	"time"
)

// Tenant es la organización raíz (una iglesia con todas sus sedes).
type Tenant struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
}

// LocalChurch es una sede dentro de un tenant.
type LocalChurch struct {
	ID        string
	TenantID  string
	Name      string
	Slug      string
	CreatedAt time.Time
}

// TenantStats es la fila del listado admin.
type TenantStats struct {
	Tenant
	ChurchCount int
	UserCount   int
}

type CreateTenantInput struct {
	Name string
	Slug string
}

type CreateChurchInput struct {
	TenantID string
	Name     string
	Slug     string
}

// TenantRepository define operaciones sobre tenants e iglesias locales.
type TenantRepository interface {
	// GetTenant busca un tenant por ID. Retorna ErrNotFound si no existe.
	GetTenant(ctx context.Context, id string) (*Tenant, error)

	// GetTenantBySlug busca un tenant por slug.
	GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error)

	// ListTenants lista todos los tenants con conteos (solo admin).
	ListTenants(ctx context.Context) ([]TenantStats, error)

	// ListChurches lista las iglesias de un tenant.
	ListChurches(ctx context.Context, tenantID string) ([]LocalChurch, error)

	// ChurchIDs devuelve los IDs de iglesia de un tenant. Se usa al emitir
	// tokens para calcular el alcance de ADMIN/PASTOR.
	ChurchIDs(ctx context.Context, tenantID string) ([]string, error)

	// CreateTenant crea un tenant. Retorna ErrConflict si el slug ya existe.
	CreateTenant(ctx context.Context, in CreateTenantInput) (*Tenant, error)

	// CreateChurch crea una iglesia local dentro de un tenant.
	CreateChurch(ctx context.Context, in CreateChurchInput) (*LocalChurch, error)
}
