package domain

import "fmt"

// Visibility es el nivel de privacidad del perfil de un miembro.
type Visibility string

const (
	// VisibilityPublic: visible para cualquier usuario autenticado.
	VisibilityPublic Visibility = "PUBLIC"
	// VisibilityMembers: visible para MEMBER en adelante.
	VisibilityMembers Visibility = "MEMBERS"
	// VisibilityLeaders: visible para LEADER en adelante.
	VisibilityLeaders Visibility = "LEADERS"
	// VisibilityPrivate: solo el dueño (y ADMIN+ para identificación).
	VisibilityPrivate Visibility = "PRIVATE"
)

var visibilities = map[Visibility]struct{}{
	VisibilityPublic:  {},
	VisibilityMembers: {},
	VisibilityLeaders: {},
	VisibilityPrivate: {},
}

func (v Visibility) Valid() bool {
	_, ok := visibilities[v]
	return ok
}

func (v Visibility) String() string { return string(v) }

func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown visibility %q", s)
	}
	return v, nil
}
