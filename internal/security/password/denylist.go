package password

import "strings"

// common junta passwords que aparecen en cualquier lista de credenciales
// filtradas. La política de composición no los frena (Password123! cumple
// todo), así que se chequean aparte.
var common = map[string]struct{}{
	"password":      {},
	"password1":     {},
	"password123":   {},
	"password123!":  {},
	"contraseña123": {},
	"12345678":      {},
	"123456789":     {},
	"qwerty123":     {},
	"admin123":      {},
	"letmein123":    {},
	"welcome123":    {},
	"iglesia123":    {},
	"shepherd123":   {},
	"superadmin123": {},
}

// Common reporta si la credencial está en la lista de passwords quemados.
// El match es case-insensitive.
func Common(pw string) bool {
	_, ok := common[strings.ToLower(strings.TrimSpace(pw))]
	return ok
}
