// Package directory contiene los controllers del directorio de miembros.
package directory

import (
	svc "github.com/dropDatabas3/shepherd/internal/http/services/directory"
)

// Controllers agrupa los controllers del dominio directory.
type Controllers struct {
	Search *SearchController
	Member *MemberController
	Me     *MeController
}

// NewControllers crea el agregador de controllers de directory.
func NewControllers(s svc.Service) *Controllers {
	return &Controllers{
		Search: NewSearchController(s),
		Member: NewMemberController(s),
		Me:     NewMeController(s),
	}
}
