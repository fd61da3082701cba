// Package pathways contiene los DTOs de pathways de discipulado.
package pathways

import "time"

// Step es un paso del pathway, en orden.
type Step struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Pathway es la proyección de un pathway con sus pasos.
type Pathway struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Steps       []Step `json:"steps"`
}

// ListResponse es la respuesta de GET /pathways.
type ListResponse struct {
	Pathways []Pathway `json:"pathways"`
}

// EnrollRequest es el body de POST /pathways/{id}/enroll.
type EnrollRequest struct {
	ClientRequestID string `json:"clientRequestId"`
}

// Estados posibles de las respuestas de enroll y complete.
const (
	StatusOK        = "ok"
	StatusDuplicate = "duplicate"
)

// EnrollResponse es la respuesta de POST /pathways/{id}/enroll.
type EnrollResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CompleteStepResponse es la respuesta de completar un paso. Completed viene
// estampado cuando ese paso cerró el pathway.
type CompleteStepResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"pathwayCompletedAt,omitempty"`
}
