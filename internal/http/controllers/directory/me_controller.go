package directory

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/shepherd/internal/http/dto/directory"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/directory"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// MeController maneja GET /me y PATCH /me.
type MeController struct {
	service svc.Service
}

func NewMeController(service svc.Service) *MeController {
	return &MeController{service: service}
}

// Get devuelve el perfil propio completo.
func (c *MeController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	result, err := c.service.Me(ctx, p)
	if err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			httperrors.WriteError(w, r, httperrors.ErrNotFound)
			return
		}
		logger.From(ctx).Error("me error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}

// Patch actualiza nombre, teléfono, visibilidad y allowContact del perfil
// propio. Campos ausentes no cambian.
func (c *MeController) Patch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	var req dto.UpdateMeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.UpdateMe(ctx, p, req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrInvalidField):
			httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("profile", err.Error()))
		case errors.Is(err, svc.ErrNotFound):
			httperrors.WriteError(w, r, httperrors.ErrNotFound)
		default:
			logger.From(ctx).Error("update me error", logger.Err(err))
			httperrors.WriteError(w, r, httperrors.ErrInternal)
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}
