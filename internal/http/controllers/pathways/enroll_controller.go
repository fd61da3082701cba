package pathways

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/shepherd/internal/http"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/pathways"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/pathways"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
	"github.com/dropDatabas3/shepherd/internal/validation"
)

const endpointPathwayEnroll = "pathways.enroll"

// EnrollController maneja POST /pathways/{id}/enroll.
type EnrollController struct {
	service svc.Service
	idem    *idempotency.Engine
}

func NewEnrollController(service svc.Service, idem *idempotency.Engine) *EnrollController {
	return &EnrollController{service: service, idem: idem}
}

// Enroll inscribe al principal bajo el motor de idempotencia. Una inscripción
// previa (otro clientRequestId) responde "duplicate".
func (c *EnrollController) Enroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)
	pathwayID := chi.URLParam(r, "id")

	var req dto.EnrollRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !validation.ValidClientRequestID(req.ClientRequestID) {
		httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("clientRequestId", "must be 8-128 chars of [A-Za-z0-9._:-]"))
		return
	}

	res, err := c.idem.Do(ctx, p, endpointPathwayEnroll+":"+pathwayID, req.ClientRequestID, func(ctx context.Context) (int, []byte, error) {
		out, created, err := c.service.Enroll(ctx, p, pathwayID)
		if err != nil {
			if errors.Is(err, svc.ErrNotFound) {
				status, body := httperrors.Encode(httperrors.ErrNotFound)
				return status, body, nil
			}
			return 0, nil, err
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		body, err := json.Marshal(out)
		return status, body, err
	})
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	if res.Replayed {
		httpx.RecordIdempotencyReplay(endpointPathwayEnroll)
	}
	helpers.WriteIdempotent(w, res)
}
