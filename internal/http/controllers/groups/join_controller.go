package groups

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/shepherd/internal/http"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/groups"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/groups"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
	"github.com/dropDatabas3/shepherd/internal/validation"
)

const endpointGroupJoin = "groups.join"

// JoinController maneja POST /groups/{id}/requests.
type JoinController struct {
	service svc.Service
	idem    *idempotency.Engine
}

func NewJoinController(service svc.Service, idem *idempotency.Engine) *JoinController {
	return &JoinController{service: service, idem: idem}
}

// Join registra la solicitud de ingreso bajo el motor de idempotencia. Una
// PENDING previa responde "duplicate"; pertenecer ya al grupo es 409.
func (c *JoinController) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)
	groupID := chi.URLParam(r, "id")

	var req dto.JoinRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !validation.ValidClientRequestID(req.ClientRequestID) {
		httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("clientRequestId", "must be 8-128 chars of [A-Za-z0-9._:-]"))
		return
	}

	res, err := c.idem.Do(ctx, p, endpointGroupJoin+":"+groupID, req.ClientRequestID, func(ctx context.Context) (int, []byte, error) {
		out, created, err := c.service.RequestJoin(ctx, p, groupID)
		if err != nil {
			switch {
			case errors.Is(err, svc.ErrNotFound):
				status, body := httperrors.Encode(httperrors.ErrNotFound)
				return status, body, nil
			case errors.Is(err, svc.ErrAlreadyMember):
				status, body := httperrors.Encode(httperrors.ErrConflict.WithMessage("Already a member of this group."))
				return status, body, nil
			default:
				return 0, nil, err
			}
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
		httpx.RecordIdempotencyReplay(endpointGroupJoin)
	}
	helpers.WriteIdempotent(w, res)
}
