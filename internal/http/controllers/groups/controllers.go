// Package groups contiene los controllers de life groups.
package groups

import (
	svc "github.com/dropDatabas3/shepherd/internal/http/services/groups"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
)

// Controllers agrupa los controllers del dominio groups.
type Controllers struct {
	List     *ListController
	Join     *JoinController
	Decision *DecisionController
}

// NewControllers crea el agregador de controllers de groups.
func NewControllers(s svc.Service, idem *idempotency.Engine) *Controllers {
	return &Controllers{
		List:     NewListController(s),
		Join:     NewJoinController(s, idem),
		Decision: NewDecisionController(s),
	}
}
