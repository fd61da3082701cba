package domain

import "fmt"

// Role es el rol de un usuario dentro de su iglesia.
// El orden es total: MEMBER < LEADER < VIP < ADMIN < PASTOR < SUPER_ADMIN.
// VIP es el equipo de seguimiento de first timers, por eso está sobre LEADER.
type Role string

const (
	RoleMember     Role = "MEMBER"
	RoleLeader     Role = "LEADER"
	RoleVIP        Role = "VIP"
	RoleAdmin      Role = "ADMIN"
	RolePastor     Role = "PASTOR"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

var roleRanks = map[Role]int{
	RoleMember:     0,
	RoleLeader:     1,
	RoleVIP:        2,
	RoleAdmin:      3,
	RolePastor:     4,
	RoleSuperAdmin: 5,
}

// Rank devuelve la posición del rol en el orden total, -1 si es desconocido.
func (r Role) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return -1
}

// Valid reporta si el rol es uno de los conocidos.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

func (r Role) String() string { return string(r) }

// ParseRole convierte un string a Role. Falla con roles desconocidos:
// un rol que no conocemos nunca debe ganar permisos por accidente.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Roles lista los roles en orden ascendente de privilegio.
func Roles() []Role {
	return []Role{RoleMember, RoleLeader, RoleVIP, RoleAdmin, RolePastor, RoleSuperAdmin}
}
