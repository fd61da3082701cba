package admin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/shepherd/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/admin"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// FlagsController maneja la administración de feature flags bajo /admin/flags.
type FlagsController struct {
	service svc.Service
}

func NewFlagsController(service svc.Service) *FlagsController {
	return &FlagsController{service: service}
}

// List devuelve todos los flags con su configuración completa.
func (c *FlagsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	result, err := c.service.ListFlags(ctx, p)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, result)
}

// Update crea o modifica un flag. Campos ausentes no cambian.
func (c *FlagsController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)
	name := chi.URLParam(r, "name")

	var req dto.UpdateFlagRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.UpdateFlag(ctx, p, name, req)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, result)
}

// Kill activa el kill switch remoto del flag.
func (c *FlagsController) Kill(w http.ResponseWriter, r *http.Request) {
	c.setKill(w, r, true)
}

// Revive desactiva el kill switch remoto del flag.
func (c *FlagsController) Revive(w http.ResponseWriter, r *http.Request) {
	c.setKill(w, r, false)
}

func (c *FlagsController) setKill(w http.ResponseWriter, r *http.Request, active bool) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)
	name := chi.URLParam(r, "name")

	result, err := c.service.SetKillSwitch(ctx, p, name, active)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, result)
}

func (c *FlagsController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, svc.ErrSuperAdminRequired):
		httperrors.WriteError(w, r, httperrors.ErrInsufficientPermissions)
	case errors.Is(err, svc.ErrNotFound):
		httperrors.WriteError(w, r, httperrors.ErrNotFound)
	case errors.Is(err, svc.ErrInvalidInput):
		httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("flag", err.Error()))
	default:
		logger.From(r.Context()).Error("flag admin error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
	}
}
