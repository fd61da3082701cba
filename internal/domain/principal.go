package domain

// Principal es la identidad resuelta del request actual: una proyección del
// usuario y su membresía, derivada de un access token verificado. Nunca se
// persiste como registro propio.
type Principal struct {
	UserID        string
	Role          Role
	TenantID      string // vacío = cuenta sin tenant (scope cerrado)
	LocalChurchID string
	// AccessibleChurchIDs se calcula al emitir el token: la propia iglesia
	// para MEMBER/LEADER/VIP, todas las del tenant para ADMIN/PASTOR.
	// SUPER_ADMIN no lleva lista (acceso sin restricción).
	AccessibleChurchIDs []string
}

// IsSuperAdmin reporta si el principal tiene el rol máximo.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// CanAccessChurch reporta si la iglesia está dentro del alcance del principal.
func (p Principal) CanAccessChurch(churchID string) bool {
	if p.IsSuperAdmin() {
		return true
	}
	for _, id := range p.AccessibleChurchIDs {
		if id == churchID {
			return true
		}
	}
	return false
}
