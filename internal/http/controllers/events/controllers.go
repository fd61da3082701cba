// Package events contiene los controllers de eventos.
package events

import (
	svc "github.com/dropDatabas3/shepherd/internal/http/services/events"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
)

// Controllers agrupa los controllers del dominio events.
type Controllers struct {
	List *ListController
	RSVP *RSVPController
}

// NewControllers crea el agregador de controllers de events.
func NewControllers(s svc.Service, idem *idempotency.Engine) *Controllers {
	return &Controllers{
		List: NewListController(s),
		RSVP: NewRSVPController(s, idem),
	}
}
