package helpers

import (
	"net/http"

	"github.com/dropDatabas3/shepherd/internal/idempotency"
)

// WriteIdempotent escribe el resultado de un request idempotente. Los replays
// llevan el header Idempotency-Replayed para debugging del cliente móvil.
func WriteIdempotent(w http.ResponseWriter, res idempotency.Result) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if res.Replayed {
		w.Header().Set("Idempotency-Replayed", "true")
	}
	w.WriteHeader(res.Status)
	_, _ = w.Write(res.Body)
}
