package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	httpx "github.com/dropDatabas3/shepherd/internal/http"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/attendance"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/attendance"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
	"github.com/dropDatabas3/shepherd/internal/validation"
)

const endpointCheckinCreate = "checkins.create"

// CheckinController maneja POST /checkins.
type CheckinController struct {
	service svc.Service
	idem    *idempotency.Engine
}

func NewCheckinController(service svc.Service, idem *idempotency.Engine) *CheckinController {
	return &CheckinController{service: service, idem: idem}
}

// Create registra un check-in bajo el motor de idempotencia: un retry con el
// mismo clientRequestId recibe la respuesta original sin re-ejecutar.
func (c *CheckinController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)

	var req dto.CheckinRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !validation.ValidClientRequestID(req.ClientRequestID) {
		httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("clientRequestId", "must be 8-128 chars of [A-Za-z0-9._:-]"))
		return
	}
	if req.ServiceID == "" {
		httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("serviceId", "is required"))
		return
	}

	res, err := c.idem.Do(ctx, p, endpointCheckinCreate, req.ClientRequestID, func(ctx context.Context) (int, []byte, error) {
		out, created, err := c.service.Checkin(ctx, p, req)
		if err != nil {
			if appErr := mapCheckinError(err); appErr != nil {
				status, body := httperrors.Encode(appErr)
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
		httpx.RecordIdempotencyReplay(endpointCheckinCreate)
	}
	helpers.WriteIdempotent(w, res)
}

// mapCheckinError traduce errores de dominio al envelope; nil = falla de
// infraestructura (no se persiste, libera la reserva).
func mapCheckinError(err error) error {
	switch {
	case errors.Is(err, svc.ErrNotFound):
		return httperrors.ErrNotFound
	case errors.Is(err, svc.ErrSelfOnly):
		return httperrors.ErrInsufficientPermissions
	default:
		return nil
	}
}
