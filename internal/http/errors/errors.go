package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	jwtx "github.com/dropDatabas3/keyward/internal/jwt"
)

// errorResponse controla exactamente qué campos se envían al cliente.
type errorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Detail    string            `json:"detail,omitempty"`
	Fields    map[string]string `json:"validationErrors,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// now es reemplazable en tests.
var now = time.Now

// WriteError escribe la respuesta JSON para err (AppError o genérico).
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Detail:    appErr.Detail,
		Fields:    appErr.Fields,
		Timestamp: now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// FromDomain traduce los errores de dominio (jwt, repository) a AppError.
// Lo que no reconoce termina como 500.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, jwtx.ErrInvalidKeySize):
		return ErrInvalidParameter.WithDetail(err.Error()).WithCause(err)
	case errors.Is(err, jwtx.ErrKeyGenerationFailed):
		return ErrKeyGenerationFailed.WithCause(err)
	case errors.Is(err, jwtx.ErrMalformedKeyMaterial):
		return ErrMalformedKeyMaterial.WithCause(err)
	case errors.Is(err, jwtx.ErrNoActiveKey):
		return ErrNoActiveKey.WithCause(err)
	case errors.Is(err, jwtx.ErrStoreUnavailable):
		return ErrStoreUnavailable.WithCause(err)
	case errors.Is(err, jwtx.ErrKIDNotFound), repository.IsNotFound(err):
		return ErrNotFound.WithCause(err)
	case repository.IsConflict(err):
		return ErrAlreadyExists.WithCause(err)
	case errors.Is(err, repository.ErrInvalidInput):
		return ErrInvalidFormat.WithDetail(err.Error()).WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}
