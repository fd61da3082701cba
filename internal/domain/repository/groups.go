package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/shepherd/internal/authz"
)

// RequestStatus es el estado de una solicitud de ingreso a un life group.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// LifeGroup es un grupo pequeño de una iglesia local.
type LifeGroup struct {
	ID            string
	LocalChurchID string
	LeaderID      string
	Name          string
	Description   string
	CreatedAt     time.Time
}

// GroupJoinRequest es la solicitud de un miembro para unirse a un grupo.
// A lo sumo una PENDING por (group, user).
type GroupJoinRequest struct {
	ID        string
	GroupID   string
	UserID    string
	Status    RequestStatus
	DecidedBy *string
	DecidedAt *time.Time
	CreatedAt time.Time
}

// GroupMembership es la pertenencia efectiva a un grupo.
type GroupMembership struct {
	ID       string
	GroupID  string
	UserID   string
	JoinedAt time.Time
}

type CreateGroupInput struct {
	LocalChurchID string
	LeaderID      string
	Name          string
	Description   string
}

// GroupRepository define life groups, solicitudes y membresías.
type GroupRepository interface {
	// List lista los grupos del scope.
	List(ctx context.Context, scope authz.Scope, limit int) ([]LifeGroup, error)

	// Get busca un grupo dentro del scope.
	Get(ctx context.Context, scope authz.Scope, groupID string) (*LifeGroup, error)

	// GetByID busca un grupo sin scope (para resolver la iglesia de una
	// request antes de chequear permisos).
	GetByID(ctx context.Context, groupID string) (*LifeGroup, error)

	// CreateGroup crea un grupo (admin/seed).
	CreateGroup(ctx context.Context, in CreateGroupInput) (*LifeGroup, error)

	// CreateJoinRequest registra la solicitud. Si ya hay una PENDING del
	// mismo usuario devuelve la existente y created=false. Si el usuario ya
	// es miembro retorna ErrConflict.
	CreateJoinRequest(ctx context.Context, groupID, userID string) (r *GroupJoinRequest, created bool, err error)

	// GetJoinRequest busca una solicitud por ID (sin scope; el service
	// resuelve el grupo y chequea permisos).
	GetJoinRequest(ctx context.Context, requestID string) (*GroupJoinRequest, error)

	// Approve aprueba la solicitud y crea la membresía en una sola
	// transacción: o quedan ambas o ninguna. Retorna ErrAlreadyDecided si la
	// solicitud ya no está PENDING.
	Approve(ctx context.Context, requestID, decidedBy string) (*GroupMembership, error)

	// Reject rechaza la solicitud. Retorna ErrAlreadyDecided si ya no está
	// PENDING.
	Reject(ctx context.Context, requestID, decidedBy string) error

	// ListMembers lista las membresías de un grupo.
	ListMembers(ctx context.Context, groupID string) ([]GroupMembership, error)
}
