package authz

import "github.com/dropDatabas3/shepherd/internal/domain"

// HasMinRole reporta si actual alcanza el nivel de required en el orden total
// MEMBER < LEADER < VIP < ADMIN < PASTOR < SUPER_ADMIN. Roles desconocidos
// nunca pasan, en ninguna de las dos posiciones.
func HasMinRole(actual, required domain.Role) bool {
	a, r := actual.Rank(), required.Rank()
	if a < 0 || r < 0 {
		return false
	}
	return a >= r
}

// CanViewProfile decide si viewer puede ver el perfil de un miembro con el
// tier de visibilidad dado. Total: toda combinación rol/tier mapea a un bool
// definido, sin fallthrough a visible.
//
// ADMIN+ saltea los tiers (necesita identificar miembros), pero eso NO
// alcanza para los campos de contacto: ver CanViewContactDetails.
func CanViewProfile(viewer domain.Role, visibility domain.Visibility, isSelf bool) bool {
	if isSelf {
		return true
	}
	if HasMinRole(viewer, domain.RoleAdmin) {
		return true
	}
	switch visibility {
	case domain.VisibilityPublic:
		return viewer.Valid()
	case domain.VisibilityMembers:
		return HasMinRole(viewer, domain.RoleMember)
	case domain.VisibilityLeaders:
		return HasMinRole(viewer, domain.RoleLeader)
	case domain.VisibilityPrivate:
		return false
	default:
		return false
	}
}

// CanViewContactDetails decide si viewer puede ver email/teléfono del
// miembro. El tier de visibilidad es necesario pero no suficiente: el
// allowContact del dueño gatea los campos de contacto incluso para ADMIN+.
// El dueño siempre ve su propio perfil completo.
func CanViewContactDetails(viewer domain.Role, visibility domain.Visibility, allowContact, isSelf bool) bool {
	if isSelf {
		return true
	}
	if !allowContact {
		return false
	}
	return CanViewProfile(viewer, visibility, false)
}
