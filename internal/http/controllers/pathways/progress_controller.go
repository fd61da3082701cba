package pathways

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/pathways"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// ProgressController maneja POST /enrollments/{id}/steps/{stepId}/complete.
type ProgressController struct {
	service svc.Service
}

func NewProgressController(service svc.Service) *ProgressController {
	return &ProgressController{service: service}
}

// Complete marca un paso de la inscripción (LEADER+). Re-marcar un paso ya
// completado responde "duplicate" con la fila original.
func (c *ProgressController) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)
	enrollmentID := chi.URLParam(r, "id")
	stepID := chi.URLParam(r, "stepId")

	result, created, err := c.service.CompleteStep(ctx, p, enrollmentID, stepID)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrLeaderRequired):
			httperrors.WriteError(w, r, httperrors.ErrInsufficientPermissions)
		case errors.Is(err, svc.ErrNotFound):
			httperrors.WriteError(w, r, httperrors.ErrNotFound)
		default:
			logger.From(ctx).Error("complete step error", logger.Err(err))
			httperrors.WriteError(w, r, httperrors.ErrInternal)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	helpers.WriteJSON(w, status, result)
}
