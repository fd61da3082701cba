package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/shepherd/internal/http"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/events"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/http/helpers"
	mw "github.com/dropDatabas3/shepherd/internal/http/middlewares"
	svc "github.com/dropDatabas3/shepherd/internal/http/services/events"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
	"github.com/dropDatabas3/shepherd/internal/validation"
)

const endpointEventRSVP = "events.rsvp"

// RSVPController maneja POST /events/{id}/rsvp.
type RSVPController struct {
	service svc.Service
	idem    *idempotency.Engine
}

func NewRSVPController(service svc.Service, idem *idempotency.Engine) *RSVPController {
	return &RSVPController{service: service, idem: idem}
}

// RSVP confirma asistencia bajo el motor de idempotencia. El duplicado de
// dominio (RSVP previo con otro clientRequestId) responde "duplicate".
func (c *RSVPController) RSVP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := mw.MustGetPrincipal(ctx)
	eventID := chi.URLParam(r, "id")

	var req dto.RSVPRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !validation.ValidClientRequestID(req.ClientRequestID) {
		httperrors.WriteError(w, r, httperrors.ErrValidation.WithDetail("clientRequestId", "must be 8-128 chars of [A-Za-z0-9._:-]"))
		return
	}

	// El event id entra a la clave: el mismo clientRequestId sobre dos eventos
	// distintos son dos operaciones distintas.
	res, err := c.idem.Do(ctx, p, endpointEventRSVP+":"+eventID, req.ClientRequestID, func(ctx context.Context) (int, []byte, error) {
		out, created, err := c.service.RSVP(ctx, p, eventID)
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
		httpx.RecordIdempotencyReplay(endpointEventRSVP)
	}
	helpers.WriteIdempotent(w, res)
}
