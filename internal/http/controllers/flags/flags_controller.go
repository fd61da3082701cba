// Package flags contiene el controller público de configuración de flags.
package flags

import (
	"net/http"

	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
	"github.com/dropDatabas3/shepherd/pkg/flags"
)

// Controller maneja GET /flags: la configuración que consumen los SDKs
// cliente. Sin autenticación; la config de flags no es sensible y el SDK la
// necesita antes del login.
type Controller struct {
	repo repository.FlagRepository
}

func NewController(repo repository.FlagRepository) *Controller {
	return &Controller{repo: repo}
}

// listResponse replica el formato que decodifica el SDK.
type listResponse struct {
	Flags []flags.Flag `json:"flags"`
}

// List devuelve todos los flags. Cacheable por un minuto: el SDK refresca a
// ese mismo ritmo.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := c.repo.List(ctx)
	if err != nil {
		logger.From(ctx).Error("list flags error", logger.Err(err))
		httperrors.WriteError(w, r, httperrors.ErrInternal)
		return
	}

	out := make([]flags.Flag, 0, len(rows))
	for _, f := range rows {
		out = append(out, flags.Flag{
			Name:              f.Name,
			Description:       f.Description,
			Enabled:           f.Enabled,
			RolloutPercentage: f.RolloutPercentage,
			KillSwitchActive:  f.KillSwitchActive,
			RiskLevel:         f.RiskLevel,
		})
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	helpers.WriteJSON(w, http.StatusOK, listResponse{Flags: out})
}
