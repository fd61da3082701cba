package announcements

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/shepherd/internal/http/dto/announcements"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/announcements"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// CreateController maneja POST /announcements.
type CreateController struct {
	service svc.Service
}

func NewCreateController(service svc.Service) *CreateController {
	return &CreateController{service: service}
}

// Create publica un anuncio (ADMIN+). El fan-out por email, si se pide,
// corre en background: la respuesta no espera al SMTP.
func (c *CreateController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	var req dto.CreateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.Create(ctx, p, req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrAdminRequired):
			httperrors.WriteError(w, r, httperrors.ErrInsufficientPermissions)
		case errors.Is(err, svc.ErrChurchOutOfScope):
			httperrors.WriteError(w, r, httperrors.ErrTenantMismatch)
		case errors.Is(err, svc.ErrInvalidInput):
			httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("announcement", err.Error()))
		default:
			logger.From(ctx).Error("create announcement error", logger.Err(err))
			httperrors.WriteError(w, r, httperrors.ErrInternal)
		}
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, result)
}
