// Package admin contiene los controllers de la superficie administrativa.
package admin

import (
	svc "github.com/dropDatabas3/shepherd/internal/http/services/admin"
)

// Controllers agrupa los controllers del dominio admin.
type Controllers struct {
	Tenants  *TenantsController
	Flags    *FlagsController
	Sessions *SessionsController
}

// NewControllers crea el agregador de controllers de admin.
func NewControllers(s svc.Service) *Controllers {
	return &Controllers{
		Tenants:  NewTenantsController(s),
		Flags:    NewFlagsController(s),
		Sessions: NewSessionsController(s),
	}
}
