// Package pathways implementa los recorridos de discipulado: listado,
// inscripción y registro de progreso.
package pathways

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/pathways"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// Service define las operaciones de pathways.
type Service interface {
	// List lista los pathways del tenant con sus pasos.
	List(ctx context.Context, p domain.Principal) (*dto.ListResponse, error)

	// Enroll inscribe al principal. created es false si ya estaba inscripto.
	Enroll(ctx context.Context, p domain.Principal, pathwayID string) (res *dto.EnrollResponse, created bool, err error)

	// CompleteStep registra el paso de una inscripción (LEADER+). El último
	// paso pendiente estampa la inscripción como completa.
	CompleteStep(ctx context.Context, p domain.Principal, enrollmentID, stepID string) (res *dto.CompleteStepResponse, created bool, err error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Pathways repository.PathwayRepository
}

var (
	// ErrNotFound cubre pathways, inscripciones o pasos fuera del alcance.
	ErrNotFound = errors.New("pathway or enrollment not found")
	// ErrLeaderRequired indica que registrar progreso pide LEADER+.
	ErrLeaderRequired = errors.New("recording progress requires leader role")
)

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) List(ctx context.Context, p domain.Principal) (*dto.ListResponse, error) {
	scope := authz.BuildScope(p, "", authz.ScopeTenant)
	rows, err := s.deps.Pathways.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list pathways: %w", err)
	}

	out := make([]dto.Pathway, 0, len(rows))
	for _, pw := range rows {
		out = append(out, projectPathway(&pw))
	}
	return &dto.ListResponse{Pathways: out}, nil
}

func (s *service) Enroll(ctx context.Context, p domain.Principal, pathwayID string) (*dto.EnrollResponse, bool, error) {
	scope := authz.BuildScope(p, "", authz.ScopeTenant)
	pw, err := s.deps.Pathways.Get(ctx, scope, pathwayID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("enroll: get pathway: %w", err)
	}

	e, created, err := s.deps.Pathways.Enroll(ctx, pw.ID, p.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("enroll: %w", err)
	}

	status := dto.StatusOK
	if !created {
		status = dto.StatusDuplicate
	}
	return &dto.EnrollResponse{ID: e.ID, Status: status}, created, nil
}

func (s *service) CompleteStep(ctx context.Context, p domain.Principal, enrollmentID, stepID string) (*dto.CompleteStepResponse, bool, error) {
	if !authz.HasMinRole(p.Role, domain.RoleLeader) {
		return nil, false, ErrLeaderRequired
	}

	e, err := s.deps.Pathways.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("complete step: get enrollment: %w", err)
	}

	// El pathway de la inscripción tiene que caer dentro del scope del
	// principal; una inscripción ajena es 404.
	scope := authz.BuildScope(p, "", authz.ScopeTenant)
	if _, err := s.deps.Pathways.Get(ctx, scope, e.PathwayID); err != nil {
		if repository.IsNotFound(err) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("complete step: get pathway: %w", err)
	}

	prog, created, err := s.deps.Pathways.CompleteStep(ctx, e.ID, stepID, p.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("complete step: %w", err)
	}

	// Releer la inscripción: CompleteStep pudo haber estampado el cierre.
	e, err = s.deps.Pathways.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, false, fmt.Errorf("complete step: reread enrollment: %w", err)
	}
	if e.CompletedAt != nil {
		logger.From(ctx).Info("pathway completed",
			logger.ID(e.ID), logger.UserID(e.UserID))
	}

	status := dto.StatusOK
	if !created {
		status = dto.StatusDuplicate
	}
	return &dto.CompleteStepResponse{
		ID:          prog.ID,
		Status:      status,
		CompletedAt: e.CompletedAt,
	}, created, nil
}

func projectPathway(pw *repository.Pathway) dto.Pathway {
	steps := make([]dto.Step, 0, len(pw.Steps))
	for _, st := range pw.Steps {
		steps = append(steps, dto.Step{ID: st.ID, Name: st.Name, Position: st.Position})
	}
	return dto.Pathway{
		ID:          pw.ID,
		Name:        pw.Name,
		Description: pw.Description,
		Steps:       steps,
	}
}
