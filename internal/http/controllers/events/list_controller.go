package events

import (
	"net/http"
	"strconv"

	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/events"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// ListController maneja GET /events.
type ListController struct {
	service svc.Service
}

func NewListController(service svc.Service) *ListController {
	return &ListController{service: service}
}

// List devuelve los eventos del scope. Query params: upcoming=true filtra a
// futuros, limit con clamp a 100 (default 20).
func (c *ListController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	q := r.URL.Query()
	upcoming := q.Get("upcoming") == "true"
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}

	result, err := c.service.List(ctx, p, upcoming, limit)
	if err != nil {
		logger.From(ctx).Error("list events error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}
