// Package events implementa el listado de eventos y los RSVPs.
package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/events"
)

// Límites del listado. El clamp vive acá, no en el store.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Service define las operaciones de eventos.
type Service interface {
	// List lista eventos del scope del principal, ordenados por inicio.
	List(ctx context.Context, p domain.Principal, upcomingOnly bool, limit int) (*dto.ListResponse, error)

	// RSVP confirma asistencia del principal a un evento. created es false
	// cuando el RSVP ya existía.
	RSVP(ctx context.Context, p domain.Principal, eventID string) (res *dto.RSVPResponse, created bool, err error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Events repository.EventRepository
}

// ErrNotFound cubre eventos inexistentes o fuera del scope.
var ErrNotFound = errors.New("event not found")

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) List(ctx context.Context, p domain.Principal, upcomingOnly bool, limit int) (*dto.ListResponse, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	scope := authz.BuildScope(p, "", authz.ScopeChurch)
	rows, err := s.deps.Events.List(ctx, scope, repository.EventFilter{
		UpcomingOnly: upcomingOnly,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]dto.Event, 0, len(rows))
	for _, e := range rows {
		out = append(out, dto.Event{
			ID:            e.ID,
			LocalChurchID: e.LocalChurchID,
			Title:         e.Title,
			Description:   e.Description,
			Location:      e.Location,
			StartsAt:      e.StartsAt,
			EndsAt:        e.EndsAt,
			Capacity:      e.Capacity,
		})
	}
	return &dto.ListResponse{Events: out}, nil
}

func (s *service) RSVP(ctx context.Context, p domain.Principal, eventID string) (*dto.RSVPResponse, bool, error) {
	scope := authz.BuildScope(p, "", authz.ScopeChurch)

	// El Get dentro del scope es el check de acceso: un evento de otra iglesia
	// es 404, nunca un RSVP fantasma.
	e, err := s.deps.Events.Get(ctx, scope, eventID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("rsvp: get event: %w", err)
	}

	r, created, err := s.deps.Events.RSVP(ctx, e.ID, p.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("rsvp: %w", err)
	}

	status := dto.StatusOK
	if !created {
		status = dto.StatusDuplicate
	}
	return &dto.RSVPResponse{ID: r.ID, Status: status}, created, nil
}
