// Package attendance implementa el registro de asistencia a services.
package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/attendance"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// Service define las operaciones de asistencia.
type Service interface {
	// Checkin registra la asistencia de un miembro a un service. created es
	// false cuando el miembro ya estaba registrado (duplicado de dominio).
	Checkin(ctx context.Context, p domain.Principal, req dto.CheckinRequest) (res *dto.CheckinResponse, created bool, err error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Attendance repository.AttendanceRepository
	Users      repository.UserRepository
}

var (
	// ErrNotFound cubre service o miembro inexistente o fuera del scope.
	ErrNotFound = errors.New("service or member not found")
	// ErrSelfOnly indica que un MEMBER intentó registrar a otro miembro.
	ErrSelfOnly = errors.New("members can only check in themselves")
)

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) Checkin(ctx context.Context, p domain.Principal, req dto.CheckinRequest) (*dto.CheckinResponse, bool, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("attendance"), logger.Op("Checkin"))

	memberID := req.MemberID
	if memberID == "" {
		memberID = p.UserID
	}
	if memberID != p.UserID && !authz.HasMinRole(p.Role, domain.RoleLeader) {
		return nil, false, ErrSelfOnly
	}

	scope := authz.BuildScope(p, "", authz.ScopeChurch)

	svc, err := s.deps.Attendance.GetService(ctx, scope, req.ServiceID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("checkin: get service: %w", err)
	}

	member, err := s.deps.Users.GetScoped(ctx, scope, memberID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("checkin: get member: %w", err)
	}

	c, created, err := s.deps.Attendance.CreateCheckin(ctx, repository.CreateCheckinInput{
		LocalChurchID: svc.LocalChurchID,
		ServiceID:     svc.ID,
		MemberID:      member.ID,
		NewBeliever:   req.NewBeliever || member.IsNewBeliever,
	})
	if err != nil {
		return nil, false, fmt.Errorf("checkin: %w", err)
	}

	status := dto.StatusOK
	if !created {
		status = dto.StatusDuplicate
	}
	log.Debug("checkin recorded", logger.ID(c.ID), logger.String("status", status))

	return &dto.CheckinResponse{ID: c.ID, Status: status}, created, nil
}
