package directory

import (
	"net/http"
	"strconv"

	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/directory"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// SearchController maneja GET /directory/search.
type SearchController struct {
	service svc.Service
}

func NewSearchController(service svc.Service) *SearchController {
	return &SearchController{service: service}
}

// Search busca miembros del tenant por prefijo. Query params: q, limit
// (clamp a 50, default 20).
func (c *SearchController) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}

	result, err := c.service.Search(ctx, p, q.Get("q"), limit)
	if err != nil {
		logger.From(ctx).Error("directory search error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}
