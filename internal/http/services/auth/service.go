// Package auth implementa login, rotación de refresh tokens y logout.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/shepherd/internal/jwt"
)

// Service define las operaciones de autenticación.
type Service interface {
	// Login valida credenciales y emite access token + cadena nueva de
	// refresh.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)

	// Refresh rota el refresh token presentado y emite un access token
	// nuevo. El reuso de un token ya rotado revoca la cadena completa.
	Refresh(ctx context.Context, rawToken string) (*dto.RefreshResponse, error)

	// Logout revoca la cadena del token presentado. Idempotente: un token
	// desconocido no es error.
	Logout(ctx context.Context, rawToken string) error
}

// Deps contiene las dependencias del servicio de auth.
type Deps struct {
	Users   repository.UserRepository
	Tenants repository.TenantRepository
	Tokens  repository.TokenRepository
	Issuer  *jwtx.Issuer

	// RefreshTTL es la vida de cada refresh token emitido.
	RefreshTTL time.Duration
}

type service struct {
	deps Deps
}

// New crea el servicio de autenticación.
func New(deps Deps) Service {
	if deps.RefreshTTL <= 0 {
		deps.RefreshTTL = 30 * 24 * time.Hour
	}
	return &service{deps: deps}
}

// Errores del servicio. Los de refresh llevan el nombre del estado que el
// cliente móvil usa para decidir si fuerza re-login.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrRefreshInvalid     = errors.New("refresh token invalid")
	ErrRefreshExpired     = errors.New("refresh token expired")
	ErrRefreshReused      = errors.New("refresh token already rotated")
	ErrTokenIssue         = errors.New("token issue failed")
)

// principalFor proyecta el usuario a un Principal, calculando el alcance de
// iglesias al momento de emitir: la propia para MEMBER/LEADER/VIP, todas las
// del tenant para ADMIN/PASTOR, ninguna lista para SUPER_ADMIN.
func (s *service) principalFor(ctx context.Context, u *repository.User) (domain.Principal, error) {
	p := domain.Principal{
		UserID: u.ID,
		Role:   u.Role,
	}
	if u.TenantID != nil {
		p.TenantID = *u.TenantID
	}
	if u.LocalChurchID != nil {
		p.LocalChurchID = *u.LocalChurchID
	}

	switch {
	case u.Role == domain.RoleSuperAdmin:
		// Sin lista: acceso sin restricción.
	case u.Role == domain.RoleAdmin || u.Role == domain.RolePastor:
		if p.TenantID != "" {
			ids, err := s.deps.Tenants.ChurchIDs(ctx, p.TenantID)
			if err != nil {
				return domain.Principal{}, err
			}
			p.AccessibleChurchIDs = ids
		}
	default:
		if p.LocalChurchID != "" {
			p.AccessibleChurchIDs = []string{p.LocalChurchID}
		}
	}
	return p, nil
}

func userInfo(u *repository.User) dto.UserInfo {
	info := dto.UserInfo{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Roles: []string{string(u.Role)},
	}
	if u.TenantID != nil {
		info.TenantID = *u.TenantID
	}
	if u.LocalChurchID != nil {
		info.LocalChurchID = *u.LocalChurchID
	}
	return info
}
