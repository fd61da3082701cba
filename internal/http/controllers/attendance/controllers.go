// Package attendance contiene los controllers de check-ins.
package attendance

import (
	svc "github.com/dropDatabas3/shepherd/internal/http/services/attendance"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
)

// Controllers agrupa los controllers del dominio attendance.
type Controllers struct {
	Checkin *CheckinController
}

// NewControllers crea el agregador de controllers de attendance.
func NewControllers(s svc.Service, idem *idempotency.Engine) *Controllers {
	return &Controllers{
		Checkin: NewCheckinController(s, idem),
	}
}
