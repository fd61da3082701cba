// Package attendance contiene los DTOs de check-ins.
package attendance

// CheckinRequest es el body de POST /checkins. MemberID vacío = el propio
// principal.
type CheckinRequest struct {
	ClientRequestID string `json:"clientRequestId"`
	ServiceID       string `json:"serviceId"`
	MemberID        string `json:"memberId,omitempty"`
	NewBeliever     bool   `json:"newBeliever,omitempty"`
}

// Estados posibles de la respuesta de check-in.
const (
	StatusOK        = "ok"
	StatusDuplicate = "duplicate"
)

// CheckinResponse es la respuesta de POST /checkins. Status es "duplicate"
// cuando el miembro ya estaba registrado en ese service.
type CheckinResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
