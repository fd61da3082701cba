package groups

import (
	"net/http"

	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/groups"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// ListController maneja GET /groups.
type ListController struct {
	service svc.Service
}

func NewListController(service svc.Service) *ListController {
	return &ListController{service: service}
}

// List devuelve los life groups del scope del principal.
func (c *ListController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	result, err := c.service.List(ctx, p)
	if err != nil {
		logger.From(ctx).Error("list groups error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}
