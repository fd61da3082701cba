package firsttimers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	httpx "github.com/dropDatabas3/shepherd/internal/http"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/firsttimers"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/firsttimers"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
	"github.com/dropDatabas3/shepherd/internal/validation"
)

const endpointFirstTimerCreate = "firsttimers.create"

// CreateController maneja POST /firsttimers.
type CreateController struct {
	service svc.Service
	idem    *idempotency.Engine
}

func NewCreateController(service svc.Service, idem *idempotency.Engine) *CreateController {
	return &CreateController{service: service, idem: idem}
}

// Create da de alta al recién llegado bajo el motor de idempotencia: el retry
// del retén VIP con señal inestable no duplica usuarios.
func (c *CreateController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	var req dto.CreateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !validation.ValidClientRequestID(req.ClientRequestID) {
		httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("clientRequestId", "must be 8-128 chars of [A-Za-z0-9._:-]"))
		return
	}

	res, err := c.idem.Do(ctx, p, endpointFirstTimerCreate, req.ClientRequestID, func(ctx context.Context) (int, []byte, error) {
		out, err := c.service.Create(ctx, p, req)
		if err != nil {
			if appErr := mapCreateError(err); appErr != nil {
				status, body := httperrors.Encode(appErr)
				return status, body, nil
			}
			return 0, nil, err
		}
		body, err := json.Marshal(out)
		return http.StatusCreated, body, err
	})
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	if res.Replayed {
		httpx.RecordIdempotencyReplay(endpointFirstTimerCreate)
	}
	helpers.WriteIdempotent(w, res)
}

func mapCreateError(err error) error {
	switch {
	case errors.Is(err, svc.ErrVIPRequired):
		return httperrors.ErrInsufficientPermissions
	case errors.Is(err, svc.ErrNoChurch):
		return httperrors.ErrInsufficientPermissions
	case errors.Is(err, svc.ErrInvalidInput):
		return httperrors.ErrValidation.WithDetail("firstTimer", err.Error())
	case errors.Is(err, svc.ErrEmailTaken):
		return httperrors.ErrConflict.WithMessage("A member with this email already exists.")
	default:
		return nil
	}
}
