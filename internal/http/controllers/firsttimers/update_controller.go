package firsttimers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/shepherd/internal/http/dto/firsttimers"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/firsttimers"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// UpdateController maneja PATCH /firsttimers/{id}.
type UpdateController struct {
	service svc.Service
}

func NewUpdateController(service svc.Service) *UpdateController {
	return &UpdateController{service: service}
}

// Patch actualiza seguimiento de la ficha (VIP+): gospel shared, notas, VIP
// asignado. Campos ausentes no cambian.
func (c *UpdateController) Patch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)
	id := chi.URLParam(r, "id")

	var req dto.UpdateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.Update(ctx, p, id, req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrVIPRequired):
			httperrors.WriteError(w, r, httperrors.ErrInsufficientPermissions)
		case errors.Is(err, svc.ErrNotFound):
			httperrors.WriteError(w, r, httperrors.ErrNotFound)
		default:
			logger.From(ctx).Error("update first timer error", logger.Err(err))
			httperrors.WriteError(w, r, httperrors.ErrInternal)
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}
