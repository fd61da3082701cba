// Package events contiene los DTOs de eventos y RSVPs.
package events

import "time"

// Event es la proyección de un evento para el cliente móvil.
type Event struct {
	ID            string    `json:"id"`
	LocalChurchID string    `json:"localChurchId"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Location      string    `json:"location,omitempty"`
	StartsAt      time.Time `json:"startsAt"`
	EndsAt        time.Time `json:"endsAt"`
	Capacity      int       `json:"capacity,omitempty"`
}

// ListResponse es la respuesta de GET /events.
type ListResponse struct {
	Events []Event `json:"events"`
}

// RSVPRequest es el body de POST /events/{id}/rsvp.
type RSVPRequest struct {
	ClientRequestID string `json:"clientRequestId"`
}

// Estados posibles de la respuesta de RSVP.
const (
	StatusOK        = "ok"
	StatusDuplicate = "duplicate"
)

// RSVPResponse es la respuesta de POST /events/{id}/rsvp.
type RSVPResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
