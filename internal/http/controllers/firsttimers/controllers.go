// Package firsttimers contiene los controllers de fichas de first timers.
package firsttimers

import (
	svc "github.com/dropDatabas3/shepherd/internal/http/services/firsttimers"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
)

// Controllers agrupa los controllers del dominio firsttimers.
type Controllers struct {
	Create *CreateController
	List   *ListController
	Update *UpdateController
}

// NewControllers crea el agregador de controllers de firsttimers.
func NewControllers(s svc.Service, idem *idempotency.Engine) *Controllers {
	return &Controllers{
		Create: NewCreateController(s, idem),
		List:   NewListController(s),
		Update: NewUpdateController(s),
	}
}
