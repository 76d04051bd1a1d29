package httpx

import (
	"errors"
	"net/http"

	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Validation and conflict failures both answer 400 with the single
// human-readable reason produced by the service layer.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "not-found", "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "validation", "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusBadRequest, "conflict", "Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "internal", "Internal Error", "")
	}
}
