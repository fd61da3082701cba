package auth

import (
	"errors"
	"net/http"

	httpx "github.com/dropDatabas3/shepherd/internal/http"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/auth"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// RefreshController maneja POST /auth/refresh.
type RefreshController struct {
	service svc.Service
}

func NewRefreshController(service svc.Service) *RefreshController {
	return &RefreshController{service: service}
}

// Refresh rota el refresh token y devuelve un access token nuevo. El mensaje
// de error distingue los estados (InvalidToken / Expired / AlreadyRotated)
// para que el cliente móvil sepa cuándo forzar re-login.
func (c *RefreshController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RefreshController.Refresh"))

	var req dto.RefreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrRefreshInvalid):
			httperrors.WriteError(w, r, httperrors.ErrRefreshInvalid)
		case errors.Is(err, svc.ErrRefreshExpired):
			httperrors.WriteError(w, r, httperrors.ErrRefreshExpired)
		case errors.Is(err, svc.ErrRefreshReused):
			httpx.RecordTokenReuse()
			httperrors.WriteError(w, r, httperrors.ErrRefreshReuse)
		default:
			log.Error("refresh error", logger.Err(err))
			httperrors.WriteError(w, r, httperrors.ErrInternal)
		}
		return
	}

	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, result)
}
