package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// errorResponse estructura interna para la serialización JSON.
// Controla exactamente qué campos ve el cliente.
type errorResponse struct {
	Error   string        `json:"error"`
	Code    string        `json:"code"`
	Details []FieldDetail `json:"details,omitempty"`
}

// Encode serializa el envelope de error sin escribirlo. Lo usa el motor de
// idempotencia para persistir respuestas 4xx de dominio tal como salieron.
func Encode(err error) (int, []byte) {
	appErr := FromError(err)
	body, _ := json.Marshal(errorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
	return appErr.HTTPStatus, body
}

// WriteError escribe la respuesta de error uniforme del API.
// Errores 5xx se loguean con su causa; al cliente solo llega el mensaje genérico.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= 500 {
		logger.From(r.Context()).Error("request failed",
			logger.String("code", appErr.Code),
			logger.Path(r.URL.Path),
			logger.Err(appErr.Err),
		)
	}

	resp := errorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
