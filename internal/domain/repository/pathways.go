package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/shepherd/internal/authz"
)

// Pathway es un recorrido de discipulado con pasos ordenados (ej: ROOTS).
// Se define a nivel tenant.
type Pathway struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	Steps       []PathwayStep
	CreatedAt   time.Time
}

type PathwayStep struct {
	ID        string
	PathwayID string
	Name      string
	Position  int
}

// Enrollment es la inscripción de un miembro a un pathway.
// Única por (pathway, user).
type Enrollment struct {
	ID          string
	PathwayID   string
	UserID      string
	EnrolledAt  time.Time
	CompletedAt *time.Time
}

// StepProgress marca un paso completado dentro de una inscripción.
type StepProgress struct {
	ID           string
	EnrollmentID string
	StepID       string
	CompletedBy  string
	CompletedAt  time.Time
}

type CreatePathwayInput struct {
	TenantID    string
	Name        string
	Description string
	StepNames   []string // en orden
}

// PathwayRepository define pathways, inscripciones y progreso.
type PathwayRepository interface {
	// List lista los pathways del scope con sus pasos.
	List(ctx context.Context, scope authz.Scope) ([]Pathway, error)

	// Get busca un pathway (con pasos) dentro del scope.
	Get(ctx context.Context, scope authz.Scope, pathwayID string) (*Pathway, error)

	// Create crea un pathway con sus pasos (admin/seed).
	Create(ctx context.Context, in CreatePathwayInput) (*Pathway, error)

	// Enroll inscribe al usuario. Si ya estaba inscripto devuelve la
	// inscripción existente y created=false.
	Enroll(ctx context.Context, pathwayID, userID string) (e *Enrollment, created bool, err error)

	// GetEnrollment busca una inscripción por ID.
	GetEnrollment(ctx context.Context, enrollmentID string) (*Enrollment, error)

	// CompleteStep marca un paso. Si era el último pendiente, estampa
	// completed_at de la inscripción en la misma transacción. Si el paso ya
	// estaba marcado devuelve la fila existente y created=false.
	CompleteStep(ctx context.Context, enrollmentID, stepID, completedBy string) (p *StepProgress, created bool, err error)
}
