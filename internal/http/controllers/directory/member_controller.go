package directory

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/directory"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// MemberController maneja GET /members/{id}.
type MemberController struct {
	service svc.Service
}

func NewMemberController(service svc.Service) *MemberController {
	return &MemberController{service: service}
}

// Get devuelve un perfil redactado. Fuera de scope o invisible por tier es
// 404, indistinguible de inexistente.
func (c *MemberController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)
	memberID := chi.URLParam(r, "id")

	result, err := c.service.GetMember(ctx, p, memberID)
	if err != nil {
		if errors.Is(err, svc.ErrNotFound) {
			httperrors.WriteError(w, r, httperrors.ErrNotFound)
			return
		}
		logger.From(ctx).Error("get member error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, result)
}
