package groups

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/shepherd/internal/domain"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/groups"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/groups"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// DecisionController maneja POST /groups/requests/{id}/approve y /reject.
type DecisionController struct {
	service svc.Service
}

func NewDecisionController(service svc.Service) *DecisionController {
	return &DecisionController{service: service}
}

// Approve aprueba la solicitud y crea la membresía. Una solicitud ya
// decidida es 409: la re-aprobación se rechaza, nunca duplica membresías.
func (c *DecisionController) Approve(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.service.Approve)
}

// Reject rechaza la solicitud.
func (c *DecisionController) Reject(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.service.Reject)
}

func (c *DecisionController) decide(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, p domain.Principal, requestID string) (*dto.DecisionResponse, error)) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)
	requestID := chi.URLParam(r, "id")

	result, err := op(ctx, p, requestID)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrNotFound):
			httperrors.WriteError(w, r, httperrors.ErrNotFound)
		case errors.Is(err, svc.ErrNotGroupLeader):
			httperrors.WriteError(w, r, httperrors.ErrInsufficientPermissions)
		case errors.Is(err, svc.ErrAlreadyDecided):
			httperrors.WriteError(w, r, httperrors.ErrConflict.WithMessage("This request was already decided."))
		default:
			logger.From(ctx).Error("group decision error", logger.Err(err))
			httperrors.WriteError(w, r, httperrors.ErrInternal)
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}
