// Package groups implementa life groups: listado, solicitudes de ingreso y
// su aprobación o rechazo.
package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/groups"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// DefaultListLimit acota GET /groups.
const DefaultListLimit = 100

// Service define las operaciones de life groups.
type Service interface {
	// List lista los grupos del scope del principal.
	List(ctx context.Context, p domain.Principal) (*dto.ListResponse, error)

	// RequestJoin registra la solicitud del principal para unirse al grupo.
	// created es false si ya había una PENDING.
	RequestJoin(ctx context.Context, p domain.Principal, groupID string) (res *dto.JoinResponse, created bool, err error)

	// Approve aprueba una solicitud y crea la membresía en una transacción.
	// Solo el líder del grupo o ADMIN+ dentro del scope.
	Approve(ctx context.Context, p domain.Principal, requestID string) (*dto.DecisionResponse, error)

	// Reject rechaza una solicitud, mismas reglas de permiso que Approve.
	Reject(ctx context.Context, p domain.Principal, requestID string) (*dto.DecisionResponse, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Groups repository.GroupRepository
}

var (
	// ErrNotFound cubre grupos o solicitudes inexistentes o fuera del scope.
	ErrNotFound = errors.New("group or request not found")
	// ErrAlreadyMember indica que el usuario ya pertenece al grupo.
	ErrAlreadyMember = errors.New("already a group member")
	// ErrAlreadyDecided indica que la solicitud ya fue aprobada o rechazada.
	ErrAlreadyDecided = errors.New("request already decided")
	// ErrNotGroupLeader indica que el principal no decide sobre este grupo.
	ErrNotGroupLeader = errors.New("not the group leader")
)

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) List(ctx context.Context, p domain.Principal) (*dto.ListResponse, error) {
	scope := authz.BuildScope(p, "", authz.ScopeChurch)
	rows, err := s.deps.Groups.List(ctx, scope, DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	out := make([]dto.Group, 0, len(rows))
	for _, g := range rows {
		out = append(out, dto.Group{
			ID:            g.ID,
			LocalChurchID: g.LocalChurchID,
			LeaderID:      g.LeaderID,
			Name:          g.Name,
			Description:   g.Description,
		})
	}
	return &dto.ListResponse{Groups: out}, nil
}

func (s *service) RequestJoin(ctx context.Context, p domain.Principal, groupID string) (*dto.JoinResponse, bool, error) {
	scope := authz.BuildScope(p, "", authz.ScopeChurch)
	g, err := s.deps.Groups.Get(ctx, scope, groupID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("request join: get group: %w", err)
	}

	req, created, err := s.deps.Groups.CreateJoinRequest(ctx, g.ID, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, false, ErrAlreadyMember
		}
		return nil, false, fmt.Errorf("request join: %w", err)
	}

	status := dto.StatusOK
	if !created {
		status = dto.StatusDuplicate
	}
	return &dto.JoinResponse{ID: req.ID, Status: status}, created, nil
}

func (s *service) Approve(ctx context.Context, p domain.Principal, requestID string) (*dto.DecisionResponse, error) {
	req, err := s.authorizeDecision(ctx, p, requestID)
	if err != nil {
		return nil, err
	}

	m, err := s.deps.Groups.Approve(ctx, req.ID, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyDecided) {
			return nil, ErrAlreadyDecided
		}
		return nil, fmt.Errorf("approve request: %w", err)
	}

	logger.From(ctx).Info("join request approved",
		logger.ID(req.ID), logger.String("group_id", m.GroupID), logger.UserID(m.UserID))

	joined := m.JoinedAt
	return &dto.DecisionResponse{
		RequestID:    req.ID,
		Status:       string(repository.RequestApproved),
		MembershipID: m.ID,
		JoinedAt:     &joined,
	}, nil
}

func (s *service) Reject(ctx context.Context, p domain.Principal, requestID string) (*dto.DecisionResponse, error) {
	req, err := s.authorizeDecision(ctx, p, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Groups.Reject(ctx, req.ID, p.UserID); err != nil {
		if errors.Is(err, repository.ErrAlreadyDecided) {
			return nil, ErrAlreadyDecided
		}
		return nil, fmt.Errorf("reject request: %w", err)
	}

	return &dto.DecisionResponse{
		RequestID: req.ID,
		Status:    string(repository.RequestRejected),
	}, nil
}

// authorizeDecision resuelve la solicitud y su grupo, y verifica que el
// principal decida: líder del grupo, o ADMIN+ con el grupo dentro del scope.
// Un grupo fuera del scope es ErrNotFound, no ErrNotGroupLeader.
func (s *service) authorizeDecision(ctx context.Context, p domain.Principal, requestID string) (*repository.GroupJoinRequest, error) {
	req, err := s.deps.Groups.GetJoinRequest(ctx, requestID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get join request: %w", err)
	}

	g, err := s.deps.Groups.GetByID(ctx, req.GroupID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}

	scope := authz.BuildScope(p, "", authz.ScopeChurch)
	if !scope.Matches(p.TenantID, g.LocalChurchID) {
		return nil, ErrNotFound
	}
	if g.LeaderID != p.UserID && !authz.HasMinRole(p.Role, domain.RoleAdmin) {
		return nil, ErrNotGroupLeader
	}
	return req, nil
}
