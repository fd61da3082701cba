// Package authz implementa las dos piezas centrales de control de acceso:
// el scope de tenant/iglesia que acota toda consulta, y la política de roles
// y visibilidad de perfiles.
package authz

import (
	"fmt"

	"github.com/dropDatabas3/shepherd/internal/domain"
)

// ScopeField indica con qué columna se acota la entidad destino. Entidades
// distintas guardan el límite de tenant de formas distintas: memberships y
// pathways llevan tenant_id directo, eventos/servicios/grupos llevan
// local_church_id.
type ScopeField string

const (
	ScopeTenant ScopeField = "tenant_id"
	ScopeChurch ScopeField = "local_church_id"
)

type scopeKind int

const (
	scopeNone scopeKind = iota // no matchea ninguna fila (fail closed)
	scopeAll                   // sin restricción (solo SUPER_ADMIN)
	scopeValues
)

// Scope es un predicado declarativo sobre la columna de scoping. Se compone
// con los demás filtros de la consulta únicamente via AND: nunca reemplaza
// filtros del caller ni amplía acceso.
type Scope struct {
	kind   scopeKind
	field  ScopeField
	values []string
}

// Nothing devuelve el scope que no matchea ninguna fila.
func Nothing() Scope {
	return Scope{kind: scopeNone}
}

// Unrestricted devuelve el scope sin restricción.
func Unrestricted() Scope {
	return Scope{kind: scopeAll}
}

// BuildScope construye el predicado de scoping para un principal.
//
// requestedOverride es el tenant/iglesia que el caller PIDE inspeccionar:
// para SUPER_ADMIN estrecha el scope a ese valor; para cualquier otro rol
// solo estrecha si el valor ya estaba dentro de su alcance, y se ignora en
// caso contrario. Un valor provisto por el cliente jamás amplía acceso.
func BuildScope(p domain.Principal, requestedOverride string, field ScopeField) Scope {
	if p.IsSuperAdmin() {
		if requestedOverride != "" {
			return Scope{kind: scopeValues, field: field, values: []string{requestedOverride}}
		}
		return Unrestricted()
	}

	// Cuenta sin tenant: cerrado. Nunca "match everything".
	if p.TenantID == "" {
		return Nothing()
	}

	switch field {
	case ScopeTenant:
		return Scope{kind: scopeValues, field: field, values: []string{p.TenantID}}

	case ScopeChurch:
		accessible := p.AccessibleChurchIDs
		if len(accessible) == 0 {
			if p.LocalChurchID == "" {
				return Nothing()
			}
			accessible = []string{p.LocalChurchID}
		}
		if requestedOverride != "" {
			for _, id := range accessible {
				if id == requestedOverride {
					return Scope{kind: scopeValues, field: field, values: []string{requestedOverride}}
				}
			}
			// Override fuera del alcance: se ignora, no se mergea.
		}
		return Scope{kind: scopeValues, field: field, values: accessible}

	default:
		return Nothing()
	}
}

// IsUnrestricted reporta si el scope no restringe (SUPER_ADMIN sin override).
func (s Scope) IsUnrestricted() bool {
	return s.kind == scopeAll
}

// MatchesNothing reporta si el scope nunca matchea filas.
func (s Scope) MatchesNothing() bool {
	return s.kind == scopeNone
}

// Field devuelve la columna sobre la que aplica el scope ("" si all/none).
func (s Scope) Field() ScopeField {
	if s.kind != scopeValues {
		return ""
	}
	return s.field
}

// Values devuelve una copia de los valores admitidos (nil si all/none).
func (s Scope) Values() []string {
	if s.kind != scopeValues {
		return nil
	}
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// SQL renderiza el predicado como fragmento WHERE. argIndex es el número del
// primer placeholder libre ($1-based). El fragmento se concatena con AND a
// los filtros del caller.
func (s Scope) SQL(argIndex int) (string, []any) {
	switch s.kind {
	case scopeAll:
		return "TRUE", nil
	case scopeValues:
		if len(s.values) == 1 {
			return fmt.Sprintf("%s = $%d", s.field, argIndex), []any{s.values[0]}
		}
		return fmt.Sprintf("%s = ANY($%d)", s.field, argIndex), []any{s.values}
	default:
		return "FALSE", nil
	}
}

// Matches evalúa el predicado en memoria contra los campos de scoping de una
// entidad. Útil en tests y en stores no relacionales.
func (s Scope) Matches(tenantID, localChurchID string) bool {
	switch s.kind {
	case scopeAll:
		return true
	case scopeValues:
		target := tenantID
		if s.field == ScopeChurch {
			target = localChurchID
		}
		if target == "" {
			return false
		}
		for _, v := range s.values {
			if v == target {
				return true
			}
		}
		return false
	default:
		return false
	}
}
