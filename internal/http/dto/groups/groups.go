// Package groups contiene los DTOs de life groups.
package groups

import "time"

// Group es la proyección de un life group.
type Group struct {
	ID            string `json:"id"`
	LocalChurchID string `json:"localChurchId"`
	LeaderID      string `json:"leaderId"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
}

// ListResponse es la respuesta de GET /groups.
type ListResponse struct {
	Groups []Group `json:"groups"`
}

// JoinRequest es el body de POST /groups/{id}/requests.
type JoinRequest struct {
	ClientRequestID string `json:"clientRequestId"`
}

// Estados posibles de la respuesta de solicitud.
const (
	StatusOK        = "ok"
	StatusDuplicate = "duplicate"
)

// JoinResponse es la respuesta de POST /groups/{id}/requests. Status es
// "duplicate" cuando ya había una solicitud PENDING del mismo usuario.
type JoinResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// DecisionResponse es la respuesta de approve/reject.
type DecisionResponse struct {
	RequestID    string     `json:"requestId"`
	Status       string     `json:"status"`
	MembershipID string     `json:"membershipId,omitempty"`
	JoinedAt     *time.Time `json:"joinedAt,omitempty"`
}
