package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/shepherd/internal/authz"
)

// Service es una reunión dominical (u otro culto) de una iglesia local.
type Service struct {
	ID            string
	LocalChurchID string
	Name          string
	ServiceDate   time.Time
	CreatedAt     time.Time
}

// Checkin es la asistencia de un miembro a un service. Única por
// (service, member): el segundo intento devuelve la fila existente.
type Checkin struct {
	ID            string
	LocalChurchID string
	ServiceID     string
	MemberID      string
	NewBeliever   bool
	CreatedAt     time.Time
}

type CreateServiceInput struct {
	LocalChurchID string
	Name          string
	ServiceDate   time.Time
}

type CreateCheckinInput struct {
	LocalChurchID string
	ServiceID     string
	MemberID      string
	NewBeliever   bool
}

// AttendanceRepository define services y check-ins.
type AttendanceRepository interface {
	// GetService busca un service dentro del scope.
	GetService(ctx context.Context, scope authz.Scope, serviceID string) (*Service, error)

	// ListServices lista services del scope desde una fecha, ascendente.
	ListServices(ctx context.Context, scope authz.Scope, from time.Time, limit int) ([]Service, error)

	// CreateService crea un service (admin/seed).
	CreateService(ctx context.Context, in CreateServiceInput) (*Service, error)

	// CreateCheckin inserta la asistencia. Si el miembro ya estaba
	// registrado en ese service devuelve la fila existente y created=false.
	CreateCheckin(ctx context.Context, in CreateCheckinInput) (c *Checkin, created bool, err error)

	// CountCheckins cuenta asistentes de un service dentro del scope.
	CountCheckins(ctx context.Context, scope authz.Scope, serviceID string) (int, error)
}
