package errors

import (
	"fmt"
	"net/http"
)

// FieldDetail describe un error de validación a nivel de campo.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError define la estructura estándar para errores de la aplicación.
// Se serializa al cliente como {error, code, details?}.
type AppError struct {
	Code       string        `json:"code"`
	Message    string        `json:"error"`
	Details    []FieldDetail `json:"details,omitempty"`
	HTTPStatus int           `json:"-"` // usado para el header, no se serializa
	Err        error         `json:"-"` // causa original, solo para logs
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, devuelve un error interno genérico conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail agrega un detalle de campo al error (útil para validaciones).
// Devuelve una COPIA del error para no mutar las variables globales base.
func (e *AppError) WithDetail(field, message string) *AppError {
	newErr := *e
	newErr.Details = append(append([]FieldDetail(nil), e.Details...), FieldDetail{Field: field, Message: message})
	return &newErr
}

// WithDetails reemplaza los detalles del error. Devuelve una COPIA.
func (e *AppError) WithDetails(details []FieldDetail) *AppError {
	newErr := *e
	newErr.Details = details
	return &newErr
}

// WithMessage reemplaza el mensaje visible. Devuelve una COPIA.
func (e *AppError) WithMessage(message string) *AppError {
	newErr := *e
	newErr.Message = message
	return &newErr
}

// WithCause agrega el error original (causa). Devuelve una COPIA.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// Catálogo de errores predefinidos. Los códigos son parte del contrato con el
// cliente móvil; los mensajes nunca incluyen identificadores internos.

// 400 Bad Request
var (
	ErrValidation = &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "One or more fields are invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Request body exceeds the allowed size.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// 401 Unauthorized
var (
	ErrAuthenticationRequired = &AppError{
		Code:       "AUTHENTICATION_REQUIRED",
		Message:    "Authentication required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "AUTHENTICATION_REQUIRED",
		Message:    "Invalid email or password.",
		HTTPStatus: http.StatusUnauthorized,
	}

	// Estados del refresh token; el campo error lleva el nombre del estado
	// que el cliente móvil usa para decidir si fuerza re-login.
	ErrRefreshInvalid = &AppError{
		Code:       "INVALID_TOKEN",
		Message:    "InvalidToken",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrRefreshExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "Expired",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrRefreshReuse = &AppError{
		Code:       "TOKEN_REUSE_DETECTED",
		Message:    "AlreadyRotated",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrAccessTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "Access token has expired.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrAccessTokenInvalid = &AppError{
		Code:       "INVALID_TOKEN",
		Message:    "Access token is invalid.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// 403 Forbidden
var (
	ErrInsufficientPermissions = &AppError{
		Code:       "INSUFFICIENT_PERMISSIONS",
		Message:    "You do not have permission to perform this action.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrTenantMismatch = &AppError{
		Code:       "TENANT_MISMATCH",
		Message:    "The requested resource belongs to another organization.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrAccountDisabled = &AppError{
		Code:       "INSUFFICIENT_PERMISSIONS",
		Message:    "This account is disabled.",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404 Not Found
var (
	// Cubre tanto recursos inexistentes como recursos filtrados por el scope
	// de tenant: ambos casos son indistinguibles para el cliente a propósito.
	ErrNotFound = &AppError{
		Code:       "RESOURCE_NOT_FOUND",
		Message:    "The requested resource was not found.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRouteNotFound = &AppError{
		Code:       "RESOURCE_NOT_FOUND",
		Message:    "The requested route does not exist.",
		HTTPStatus: http.StatusNotFound,
	}
)

// 405 Method Not Allowed
var (
	ErrMethodNotAllowed = &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Method not allowed for this resource.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
)

// 409 Conflict
var (
	ErrDuplicateRequest = &AppError{
		Code:       "DUPLICATE_REQUEST",
		Message:    "A request with this clientRequestId is already being processed.",
		HTTPStatus: http.StatusConflict,
	}

	ErrConflict = &AppError{
		Code:       "DUPLICATE_REQUEST",
		Message:    "The request conflicts with the current state.",
		HTTPStatus: http.StatusConflict,
	}
)

// 429 Too Many Requests
var (
	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests. Try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// 500+
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL",
		Message:    "An internal error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "INTERNAL",
		Message:    "The service is temporarily unavailable.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
