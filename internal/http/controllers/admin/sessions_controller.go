package admin

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/shepherd/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/admin"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// SessionsController maneja GET /admin/sessions y POST /admin/sessions/revoke.
type SessionsController struct {
	service svc.Service
}

func NewSessionsController(service svc.Service) *SessionsController {
	return &SessionsController{service: service}
}

// List devuelve las cadenas de refresh de un usuario (?userId=). ADMIN+
// dentro del tenant; un usuario de otro tenant es 404.
func (c *SessionsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	userID := r.URL.Query().Get("userId")
	result, err := c.service.ListSessions(ctx, p, userID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, result)
}

// Revoke revoca todas las cadenas de un usuario.
func (c *SessionsController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	var req dto.RevokeSessionsRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.RevokeSessions(ctx, p, req.UserID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, result)
}

func (c *SessionsController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, svc.ErrAdminRequired):
		httperrors.WriteError(w, r, httperrors.ErrInsufficientPermissions)
	case errors.Is(err, svc.ErrNotFound):
		httperrors.WriteError(w, r, httperrors.ErrNotFound)
	case errors.Is(err, svc.ErrInvalidInput):
		httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("userId", "is required"))
	default:
		logger.From(r.Context()).Error("session admin error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
	}
}
