package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/shepherd/internal/authz"
)

// Event es un evento de una iglesia local.
type Event struct {
	ID            string
	LocalChurchID string
	Title         string
	Description   string
	Location      string
	StartsAt      time.Time
	EndsAt        time.Time
	Capacity      int // 0 = sin límite
	CreatedBy     string
	CreatedAt     time.Time
}

// EventRSVP es la confirmación de asistencia de un miembro a un evento.
// Única por (event, user).
type EventRSVP struct {
	ID        string
	EventID   string
	UserID    string
	CreatedAt time.Time
}

type CreateEventInput struct {
	LocalChurchID string
	Title         string
	Description   string
	Location      string
	StartsAt      time.Time
	EndsAt        time.Time
	Capacity      int
	CreatedBy     string
}

// EventFilter son los parámetros del listado de eventos.
type EventFilter struct {
	UpcomingOnly bool
	Limit        int
}

// EventRepository define eventos y RSVPs.
type EventRepository interface {
	// List lista eventos del scope ordenados por fecha de inicio.
	List(ctx context.Context, scope authz.Scope, filter EventFilter) ([]Event, error)

	// Get busca un evento dentro del scope.
	Get(ctx context.Context, scope authz.Scope, eventID string) (*Event, error)

	// Create crea un evento (ADMIN+).
	Create(ctx context.Context, in CreateEventInput) (*Event, error)

	// RSVP registra asistencia. Si ya existía devuelve la fila existente y
	// created=false.
	RSVP(ctx context.Context, eventID, userID string) (r *EventRSVP, created bool, err error)
}
