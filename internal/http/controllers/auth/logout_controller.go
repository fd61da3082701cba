package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/shepherd/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/auth"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// LogoutController maneja POST /auth/logout.
type LogoutController struct {
	service svc.Service
}

func NewLogoutController(service svc.Service) *LogoutController {
	return &LogoutController{service: service}
}

// Logout revoca la cadena del refresh token presentado. Siempre 204: un token
// desconocido o ya revocado no le da información al cliente.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	var req dto.LogoutRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.Logout(ctx, req.RefreshToken); err != nil {
		log.Error("logout error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
		return
	}

	helpers.NoStore(w)
	w.WriteHeader(http.StatusNoContent)
}
