// Package announcements contiene los controllers de anuncios.
package announcements

import (
	svc "github.com/dropDatabas3/shepherd/internal/http/services/announcements"
)

// Controllers agrupa los controllers del dominio announcements.
type Controllers struct {
	List   *ListController
	Create *CreateController
}

// NewControllers crea el agregador de controllers de announcements.
func NewControllers(s svc.Service) *Controllers {
	return &Controllers{
		List:   NewListController(s),
		Create: NewCreateController(s),
	}
}
