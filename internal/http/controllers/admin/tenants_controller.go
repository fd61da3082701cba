package admin

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/admin"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// TenantsController maneja GET /admin/tenants.
type TenantsController struct {
	service svc.Service
}

func NewTenantsController(service svc.Service) *TenantsController {
	return &TenantsController{service: service}
}

// List devuelve todos los tenants con conteos (SUPER_ADMIN).
func (c *TenantsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	result, err := c.service.ListTenants(ctx, p)
	if err != nil {
		if errors.Is(err, svc.ErrSuperAdminRequired) {
			httperrors.WriteError(w, r, httperrors.ErrInsufficientPermissions)
			return
		}
		logger.From(ctx).Error("list tenants error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}
