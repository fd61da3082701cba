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

// LoginController maneja POST /auth/login.
type LoginController struct {
	service svc.Service
}

func NewLoginController(service svc.Service) *LoginController {
	return &LoginController{service: service}
}

// Login autentica con email/password y devuelve el par de tokens.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrInvalidCredentials):
			httpx.RecordLogin(false)
			httperrors.WriteError(w, r, httperrors.ErrInvalidCredentials)
		case errors.Is(err, svc.ErrUserDisabled):
			httpx.RecordLogin(false)
			httperrors.WriteError(w, r, httperrors.ErrAccountDisabled)
		default:
			log.Error("login error", logger.Err(err))
			httperrors.WriteError(w, r, httperrors.ErrInternal)
		}
		return
	}

	httpx.RecordLogin(true)
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, result)
}
