// Package pathways contiene los controllers de pathways.
package pathways

import (
	svc "github.com/dropDatabas3/shepherd/internal/http/services/pathways"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
)

// Controllers agrupa los controllers del dominio pathways.
type Controllers struct {
	List     *ListController
	Enroll   *EnrollController
	Progress *ProgressController
}

// NewControllers crea el agregador de controllers de pathways.
func NewControllers(s svc.Service, idem *idempotency.Engine) *Controllers {
	return &Controllers{
		List:     NewListController(s),
		Enroll:   NewEnrollController(s, idem),
		Progress: NewProgressController(s),
	}
}
