package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
)

// User representa un miembro del sistema. El rol y la membresía primaria
// (tenant + iglesia local) viven aplanados acá: el Principal de cada request
// es una proyección de esta fila.
type User struct {
	ID                string
	TenantID          *string // nil = cuenta sin tenant (scope cerrado)
	LocalChurchID     *string
	Email             string
	Name              string
	Phone             *string
	Role              domain.Role
	PasswordHash      string
	ProfileVisibility domain.Visibility
	AllowContact      bool
	IsNewBeliever     bool
	DisabledAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Disabled reporta si la cuenta está deshabilitada.
func (u *User) Disabled() bool {
	return u.DisabledAt != nil
}

// CreateUserInput contiene los datos para crear un usuario.
type CreateUserInput struct {
	TenantID          string
	LocalChurchID     string
	Email             string
	Name              string
	Phone             string
	Role              domain.Role
	PasswordHash      string
	ProfileVisibility domain.Visibility // default MEMBERS
	AllowContact      bool
	IsNewBeliever     bool
}

// UpdateProfileInput contiene los campos que el dueño puede editar.
// Punteros nil = sin cambio.
type UpdateProfileInput struct {
	Name              *string
	Phone             *string
	ProfileVisibility *domain.Visibility
	AllowContact      *bool
}

// DirectoryFilter son los parámetros de búsqueda del directorio.
type DirectoryFilter struct {
	Query string // prefijo de nombre o email
	Limit int    // clamp en el service, no acá
}

// UserRepository define operaciones sobre usuarios/miembros.
type UserRepository interface {
	// GetByEmail busca por email (único global). Para login: sin scope.
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID busca por ID sin scope. Solo para operaciones del propio
	// principal (perfil propio, emisión de tokens).
	GetByID(ctx context.Context, userID string) (*User, error)

	// GetScoped busca por ID dentro del scope. Retorna ErrNotFound tanto si
	// no existe como si el scope lo filtra.
	GetScoped(ctx context.Context, scope authz.Scope, userID string) (*User, error)

	// Search busca miembros dentro del scope por prefijo de nombre/email.
	Search(ctx context.Context, scope authz.Scope, filter DirectoryFilter) ([]User, error)

	// Create crea un usuario. Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, in CreateUserInput) (*User, error)

	// UpdateProfile actualiza los campos editables por el dueño.
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*User, error)

	// SetRole cambia el rol de un usuario (admin).
	SetRole(ctx context.Context, userID string, role domain.Role) error

	// HasSuperAdmin reporta si existe al menos un SUPER_ADMIN (bootstrap).
	HasSuperAdmin(ctx context.Context) (bool, error)

	// EmailsByRole lista emails de usuarios del scope con rol >= min.
	// Lo usa el fan-out de announcements.
	EmailsByRole(ctx context.Context, scope authz.Scope, min domain.Role) ([]string, error)
}
