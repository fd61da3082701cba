package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/shepherd/internal/authz"
)

// FirstTimer es el registro de seguimiento de un recién llegado. El miembro
// en sí es una fila de users; esto es la ficha que trabaja el equipo VIP.
type FirstTimer struct {
	ID            string
	LocalChurchID string
	MemberID      string
	AssignedVipID *string
	GospelShared  bool
	Notes         string
	CreatedAt     time.Time
}

type CreateFirstTimerInput struct {
	LocalChurchID string
	AssignedVipID string
	GospelShared  bool
	Notes         string
}

type UpdateFirstTimerInput struct {
	AssignedVipID *string
	GospelShared  *bool
	Notes         *string
}

// FirstTimerRepository define las fichas de first timers.
type FirstTimerRepository interface {
	// Create crea el usuario miembro y su ficha en una sola transacción.
	Create(ctx context.Context, user CreateUserInput, ft CreateFirstTimerInput) (*FirstTimer, *User, error)

	// List lista fichas del scope, más recientes primero.
	List(ctx context.Context, scope authz.Scope, limit int) ([]FirstTimer, error)

	// Get busca una ficha dentro del scope.
	Get(ctx context.Context, scope authz.Scope, id string) (*FirstTimer, error)

	// Update actualiza campos de seguimiento dentro del scope.
	Update(ctx context.Context, scope authz.Scope, id string, in UpdateFirstTimerInput) (*FirstTimer, error)
}
