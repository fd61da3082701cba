package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe o quedó fuera
	// del scope de tenant; ambos casos son indistinguibles a propósito.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (duplicado, constraint violation).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyRotated indica que el refresh token ya fue usado: el
	// check-and-set de rotación no encontró la fila con used_at NULL.
	ErrAlreadyRotated = errors.New("refresh token already rotated")

	// ErrAlreadyDecided indica que la join request ya fue aprobada/rechazada.
	ErrAlreadyDecided = errors.New("request already decided")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsAlreadyRotated verifica si el error es ErrAlreadyRotated.
func IsAlreadyRotated(err error) bool {
	return errors.Is(err, ErrAlreadyRotated)
}
