package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
)

// Announcement es un anuncio del tenant. LocalChurchID nil = para todo el
// tenant; seteado = solo esa iglesia. MinRole acota quién lo ve.
type Announcement struct {
	ID            string
	TenantID      string
	LocalChurchID *string
	Title         string
	Body          string
	MinRole       domain.Role
	CreatedBy     string
	CreatedAt     time.Time
	ExpiresAt     *time.Time
}

type CreateAnnouncementInput struct {
	TenantID      string
	LocalChurchID string // vacío = todo el tenant
	Title         string
	Body          string
	MinRole       domain.Role
	CreatedBy     string
	ExpiresAt     *time.Time
}

// AnnouncementRepository define anuncios.
type AnnouncementRepository interface {
	// List lista anuncios vigentes del scope visibles para viewerRole,
	// filtrados además por iglesia del principal (los de otra sede no se
	// ven aunque el tenant matchee).
	List(ctx context.Context, scope authz.Scope, churchID string, viewerRole domain.Role, limit int) ([]Announcement, error)

	// Create crea un anuncio (ADMIN+).
	Create(ctx context.Context, in CreateAnnouncementInput) (*Announcement, error)
}
