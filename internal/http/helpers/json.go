// Package helpers reúne utilidades compartidas por los controllers.
package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
)

// MaxBodyBytes limita el body de los requests JSON del API móvil.
const MaxBodyBytes = 64 << 10 // 64KB

// ReadJSON decodifica el body JSON en v. Limita el tamaño a MaxBodyBytes y
// rechaza campos desconocidos. Devuelve false si ya escribió el error HTTP.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			httperrors.WriteError(w, r, httperrors.ErrBodyTooLarge)
		case errors.Is(err, io.EOF):
			httperrors.WriteError(w, r, httperrors.ErrInvalidJSON.WithDetail("body", "empty body"))
		default:
			httperrors.WriteError(w, r, httperrors.ErrInvalidJSON)
		}
		return false
	}
	return true
}

// WriteJSON escribe v como respuesta JSON con el status dado.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoStore marca la respuesta como no cacheable. Para respuestas con tokens.
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
