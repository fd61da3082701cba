package password

import "unicode"

// Policy define los requisitos de composición de una credencial.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// Bootstrap es la política de la credencial del primer SUPER_ADMIN. Es más
// exigente que la de miembros: esa cuenta administra todos los tenants.
var Bootstrap = Policy{
	MinLength:    12,
	RequireUpper: true,
	RequireLower: true,
	RequireDigit: true,
}

// Validate evalúa la política completa y devuelve todas las razones de
// rechazo, no solo la primera, para que el operador corrija de una pasada.
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	return len(reasons) == 0, reasons
}
