// Package auth contiene los controllers de los endpoints de autenticación.
package auth

import (
	svc "github.com/dropDatabas3/shepherd/internal/http/services/auth"
)

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Login   *LoginController
	Refresh *RefreshController
	Logout  *LogoutController
}

// NewControllers crea el agregador de controllers de auth.
func NewControllers(s svc.Service) *Controllers {
	return &Controllers{
		Login:   NewLoginController(s),
		Refresh: NewRefreshController(s),
		Logout:  NewLogoutController(s),
	}
}
