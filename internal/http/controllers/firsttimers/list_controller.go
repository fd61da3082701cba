package firsttimers

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/firsttimers"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// ListController maneja GET /firsttimers.
type ListController struct {
	service svc.Service
}

func NewListController(service svc.Service) *ListController {
	return &ListController{service: service}
}

// List devuelve las fichas del scope (VIP+), más recientes primero.
func (c *ListController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	result, err := c.service.List(ctx, p)
	if err != nil {
		if errors.Is(err, svc.ErrVIPRequired) {
			httperrors.WriteError(w, r, httperrors.ErrInsufficientPermissions)
			return
		}
		logger.From(ctx).Error("list first timers error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}
