// Package directory implementa la búsqueda de miembros y el perfil propio,
// aplicando la política de visibilidad y contacto en cada proyección.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/directory"
	"github.com/dropDatabas3/shepherd/internal/validation"
)

// Límites de la búsqueda.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

// Service define las operaciones del directorio.
type Service interface {
	// Search busca miembros del tenant por prefijo de nombre o email. Los
	// perfiles invisibles para el viewer se omiten; los visibles llegan
	// redactados según la política de contacto.
	Search(ctx context.Context, p domain.Principal, query string, limit int) (*dto.SearchResponse, error)

	// GetMember devuelve un perfil por id a través de la misma política. Un
	// miembro fuera del scope o invisible por tier es ErrNotFound: ambos
	// casos son indistinguibles a propósito.
	GetMember(ctx context.Context, p domain.Principal, memberID string) (*dto.Member, error)

	// Me devuelve el perfil propio completo.
	Me(ctx context.Context, p domain.Principal) (*dto.Me, error)

	// UpdateMe actualiza los campos editables por el dueño.
	UpdateMe(ctx context.Context, p domain.Principal, req dto.UpdateMeRequest) (*dto.Me, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Users repository.UserRepository
}

var (
	// ErrNotFound cubre perfiles inexistentes, fuera de scope o invisibles.
	ErrNotFound = errors.New("member not found")
	// ErrInvalidField indica un campo de PATCH /me fuera de rango.
	ErrInvalidField = errors.New("invalid profile field")
)

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) Search(ctx context.Context, p domain.Principal, query string, limit int) (*dto.SearchResponse, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	scope := authz.BuildScope(p, "", authz.ScopeTenant)
	rows, err := s.deps.Users.Search(ctx, scope, repository.DirectoryFilter{
		Query: strings.TrimSpace(query),
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("directory search: %w", err)
	}

	members := make([]dto.Member, 0, len(rows))
	for i := range rows {
		m, visible := project(p, &rows[i])
		if !visible {
			continue
		}
		members = append(members, m)
	}
	return &dto.SearchResponse{Members: members}, nil
}

func (s *service) GetMember(ctx context.Context, p domain.Principal, memberID string) (*dto.Member, error) {
	scope := authz.BuildScope(p, "", authz.ScopeTenant)
	u, err := s.deps.Users.GetScoped(ctx, scope, memberID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}

	m, visible := project(p, u)
	if !visible {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *service) Me(ctx context.Context, p domain.Principal) (*dto.Me, error) {
	u, err := s.deps.Users.GetByID(ctx, p.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("me: %w", err)
	}
	return selfProjection(u), nil
}

func (s *service) UpdateMe(ctx context.Context, p domain.Principal, req dto.UpdateMeRequest) (*dto.Me, error) {
	in := repository.UpdateProfileInput{
		AllowContact: req.AllowContact,
	}

	if req.Name != nil {
		if !validation.ValidName(*req.Name) {
			return nil, fmt.Errorf("%w: name", ErrInvalidField)
		}
		name := strings.TrimSpace(*req.Name)
		in.Name = &name
	}
	if req.Phone != nil && *req.Phone != "" {
		if !validation.ValidPhone(*req.Phone) {
			return nil, fmt.Errorf("%w: phone", ErrInvalidField)
		}
		in.Phone = req.Phone
	}
	if req.ProfileVisibility != nil {
		v, err := domain.ParseVisibility(*req.ProfileVisibility)
		if err != nil {
			return nil, fmt.Errorf("%w: profileVisibility", ErrInvalidField)
		}
		in.ProfileVisibility = &v
	}

	u, err := s.deps.Users.UpdateProfile(ctx, p.UserID, in)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update me: %w", err)
	}
	return selfProjection(u), nil
}

// project aplica la política de visibilidad y contacto. visible=false cuando
// el viewer no debe saber que el perfil existe.
func project(p domain.Principal, u *repository.User) (dto.Member, bool) {
	isSelf := u.ID == p.UserID
	if !authz.CanViewProfile(p.Role, u.ProfileVisibility, isSelf) {
		return dto.Member{}, false
	}

	m := dto.Member{
		ID:   u.ID,
		Name: u.Name,
		Role: string(u.Role),
	}
	if u.LocalChurchID != nil {
		m.LocalChurchID = *u.LocalChurchID
	}
	if authz.CanViewContactDetails(p.Role, u.ProfileVisibility, u.AllowContact, isSelf) {
		m.Email = u.Email
		if u.Phone != nil {
			m.Phone = *u.Phone
		}
	}
	return m, true
}

func selfProjection(u *repository.User) *dto.Me {
	me := &dto.Me{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              string(u.Role),
		ProfileVisibility: string(u.ProfileVisibility),
		AllowContact:      u.AllowContact,
		IsNewBeliever:     u.IsNewBeliever,
	}
	if u.Phone != nil {
		me.Phone = *u.Phone
	}
	if u.TenantID != nil {
		me.TenantID = *u.TenantID
	}
	if u.LocalChurchID != nil {
		me.LocalChurchID = *u.LocalChurchID
	}
	return me
}
