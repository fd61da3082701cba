// Package firsttimers contiene los DTOs de las fichas de first timers.
package firsttimers

import "time"

// CreateRequest es el body de POST /firsttimers. Crea el usuario MEMBER y su
// ficha de seguimiento en una sola operación.
type CreateRequest struct {
	ClientRequestID string `json:"clientRequestId"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	NewBeliever     bool   `json:"newBeliever,omitempty"`
	GospelShared    bool   `json:"gospelShared,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// FirstTimer es la proyección de una ficha.
type FirstTimer struct {
	ID            string    `json:"id"`
	MemberID      string    `json:"memberId"`
	LocalChurchID string    `json:"localChurchId"`
	AssignedVipID string    `json:"assignedVipId,omitempty"`
	GospelShared  bool      `json:"gospelShared"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateResponse es la respuesta de POST /firsttimers.
type CreateResponse struct {
	FirstTimer
	Status string `json:"status"` // siempre "ok"; los retries replayean
}

// ListResponse es la respuesta de GET /firsttimers.
type ListResponse struct {
	FirstTimers []FirstTimer `json:"firstTimers"`
}

// UpdateRequest es el body de PATCH /firsttimers/{id}. Campos ausentes no
// cambian.
type UpdateRequest struct {
	AssignedVipID *string `json:"assignedVipId,omitempty"`
	GospelShared  *bool   `json:"gospelShared,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}
