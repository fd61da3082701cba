// Package admin implementa la superficie administrativa: tenants, feature
// flags y sesiones (cadenas de refresh tokens).
package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dropDatabas3/shepherd/internal/audit"
	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/admin"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// SessionListLimit acota cuántos registros por usuario lista el panel.
const SessionListLimit = 200

// Service define las operaciones administrativas.
type Service interface {
	// ListTenants lista todos los tenants con conteos (SUPER_ADMIN).
	ListTenants(ctx context.Context, p domain.Principal) (*dto.TenantsResponse, error)

	// ListFlags lista todos los feature flags (SUPER_ADMIN).
	ListFlags(ctx context.Context, p domain.Principal) (*dto.FlagsResponse, error)

	// UpdateFlag crea o actualiza un flag (SUPER_ADMIN). Auditado.
	UpdateFlag(ctx context.Context, p domain.Principal, name string, req dto.UpdateFlagRequest) (*dto.Flag, error)

	// SetKillSwitch activa/desactiva el kill switch de un flag (SUPER_ADMIN).
	SetKillSwitch(ctx context.Context, p domain.Principal, name string, active bool) (*dto.Flag, error)

	// ListSessions lista las cadenas de refresh de un usuario (ADMIN+ dentro
	// del tenant).
	ListSessions(ctx context.Context, p domain.Principal, userID string) (*dto.SessionsResponse, error)

	// RevokeSessions revoca todas las cadenas de un usuario (ADMIN+ dentro
	// del tenant). Auditado.
	RevokeSessions(ctx context.Context, p domain.Principal, userID string) (*dto.RevokeSessionsResponse, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Tenants repository.TenantRepository
	Flags   repository.FlagRepository
	Users   repository.UserRepository
	Tokens  repository.TokenRepository
}

var (
	// ErrSuperAdminRequired indica que la operación es solo SUPER_ADMIN.
	ErrSuperAdminRequired = errors.New("super admin required")
	// ErrAdminRequired indica que la operación pide ADMIN+.
	ErrAdminRequired = errors.New("admin role required")
	// ErrNotFound cubre flags o usuarios inexistentes o fuera del tenant.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput marca un campo del flag fuera de rango.
	ErrInvalidInput = errors.New("invalid flag input")
)

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) ListTenants(ctx context.Context, p domain.Principal) (*dto.TenantsResponse, error) {
	if !p.IsSuperAdmin() {
		return nil, ErrSuperAdminRequired
	}

	rows, err := s.deps.Tenants.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	out := make([]dto.TenantStats, 0, len(rows))
	for _, t := range rows {
		out = append(out, dto.TenantStats{
			ID:          t.ID,
			Name:        t.Name,
			Slug:        t.Slug,
			ChurchCount: t.ChurchCount,
			UserCount:   t.UserCount,
			CreatedAt:   t.CreatedAt,
		})
	}
	return &dto.TenantsResponse{Tenants: out}, nil
}

func (s *service) ListFlags(ctx context.Context, p domain.Principal) (*dto.FlagsResponse, error) {
	if !p.IsSuperAdmin() {
		return nil, ErrSuperAdminRequired
	}

	rows, err := s.deps.Flags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flags: %w", err)
	}

	out := make([]dto.Flag, 0, len(rows))
	for i := range rows {
		out = append(out, projectFlag(&rows[i]))
	}
	return &dto.FlagsResponse{Flags: out}, nil
}

func (s *service) UpdateFlag(ctx context.Context, p domain.Principal, name string, req dto.UpdateFlagRequest) (*dto.Flag, error) {
	if !p.IsSuperAdmin() {
		return nil, ErrSuperAdminRequired
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrInvalidInput)
	}
	if req.RolloutPercentage != nil && (*req.RolloutPercentage < 0 || *req.RolloutPercentage > 100) {
		return nil, fmt.Errorf("%w: rolloutPercentage must be 0..100", ErrInvalidInput)
	}
	if req.RiskLevel != nil {
		switch *req.RiskLevel {
		case repository.RiskLow, repository.RiskMedium, repository.RiskHigh:
		default:
			return nil, fmt.Errorf("%w: riskLevel must be low|medium|high", ErrInvalidInput)
		}
	}

	f, err := s.deps.Flags.Upsert(ctx, repository.UpsertFlagInput{
		Name:              name,
		Description:       req.Description,
		Enabled:           req.Enabled,
		RolloutPercentage: req.RolloutPercentage,
		RiskLevel:         req.RiskLevel,
		UpdatedBy:         p.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("update flag: %w", err)
	}

	audit.Log(ctx, audit.EventFlagUpdated, map[string]any{
		"flag":    f.Name,
		"by":      p.UserID,
		"enabled": f.Enabled,
		"rollout": f.RolloutPercentage,
	})

	out := projectFlag(f)
	return &out, nil
}

func (s *service) SetKillSwitch(ctx context.Context, p domain.Principal, name string, active bool) (*dto.Flag, error) {
	if !p.IsSuperAdmin() {
		return nil, ErrSuperAdminRequired
	}

	f, err := s.deps.Flags.SetKillSwitch(ctx, name, active, p.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set kill switch: %w", err)
	}

	audit.Log(ctx, audit.EventFlagKillSwitch, map[string]any{
		"flag":   f.Name,
		"by":     p.UserID,
		"active": active,
	})
	logger.From(ctx).Warn("flag kill switch changed",
		logger.Flag(f.Name), logger.Bool("active", active))

	out := projectFlag(f)
	return &out, nil
}

func (s *service) ListSessions(ctx context.Context, p domain.Principal, userID string) (*dto.SessionsResponse, error) {
	if err := s.authorizeSessionAccess(ctx, p, userID); err != nil {
		return nil, err
	}

	recs, err := s.deps.Tokens.ListByUser(ctx, userID, SessionListLimit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	byChain := map[string][]dto.SessionToken{}
	for _, rec := range recs {
		t := dto.SessionToken{
			ID:        rec.ID,
			IssuedAt:  rec.IssuedAt,
			ExpiresAt: rec.ExpiresAt,
			UsedAt:    rec.UsedAt,
			RevokedAt: rec.RevokedAt,
		}
		if rec.SupersededBy != nil {
			t.SupersededBy = *rec.SupersededBy
		}
		byChain[rec.RotationID] = append(byChain[rec.RotationID], t)
	}

	chains := make([]dto.SessionChain, 0, len(byChain))
	for rotationID, tokens := range byChain {
		sort.Slice(tokens, func(i, j int) bool {
			return tokens[i].IssuedAt.After(tokens[j].IssuedAt)
		})
		chains = append(chains, dto.SessionChain{RotationID: rotationID, Tokens: tokens})
	}
	sort.Slice(chains, func(i, j int) bool {
		return chains[i].Tokens[0].IssuedAt.After(chains[j].Tokens[0].IssuedAt)
	})

	return &dto.SessionsResponse{UserID: userID, Chains: chains}, nil
}

func (s *service) RevokeSessions(ctx context.Context, p domain.Principal, userID string) (*dto.RevokeSessionsResponse, error) {
	if err := s.authorizeSessionAccess(ctx, p, userID); err != nil {
		return nil, err
	}

	n, err := s.deps.Tokens.RevokeAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("revoke sessions: %w", err)
	}

	audit.Log(ctx, audit.EventSessionsRevoked, map[string]any{
		"user_id": userID,
		"by":      p.UserID,
		"revoked": n,
	})

	return &dto.RevokeSessionsResponse{UserID: userID, Revoked: n}, nil
}

// authorizeSessionAccess verifica ADMIN+ y que el usuario objetivo caiga en
// el tenant del principal. Un usuario de otro tenant es ErrNotFound.
func (s *service) authorizeSessionAccess(ctx context.Context, p domain.Principal, userID string) error {
	if !authz.HasMinRole(p.Role, domain.RoleAdmin) {
		return ErrAdminRequired
	}
	if userID == "" {
		return fmt.Errorf("%w: userId", ErrInvalidInput)
	}

	scope := authz.BuildScope(p, "", authz.ScopeTenant)
	if _, err := s.deps.Users.GetScoped(ctx, scope, userID); err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("session access: %w", err)
	}
	return nil
}

func projectFlag(f *repository.FeatureFlag) dto.Flag {
	out := dto.Flag{
		Name:              f.Name,
		Description:       f.Description,
		Enabled:           f.Enabled,
		RolloutPercentage: f.RolloutPercentage,
		KillSwitchActive:  f.KillSwitchActive,
		RiskLevel:         f.RiskLevel,
		UpdatedAt:         f.UpdatedAt,
	}
	if f.UpdatedBy != nil {
		out.UpdatedBy = *f.UpdatedBy
	}
	return out
}
