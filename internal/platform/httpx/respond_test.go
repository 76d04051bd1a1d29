package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foundry-erp/foundry-erp/internal/shared"
)

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	var pd ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pd))
	return pd
}

func TestRespondErrorMapsNotFound(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("%w: purchase order 9", shared.ErrNotFound))

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	pd := decodeProblem(t, rr)
	require.Equal(t, "https://foundry-erp.dev/problems/not-found", pd.Type)
	require.Contains(t, pd.Detail, "purchase order 9")
}

func TestRespondErrorMapsValidationAndConflictTo400(t *testing.T) {
	for _, sentinel := range []error{shared.ErrValidation, shared.ErrConflict} {
		rr := httptest.NewRecorder()
		RespondError(rr, fmt.Errorf("%w: reason", sentinel))
		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.NotEmpty(t, decodeProblem(t, rr).Type)
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("pq: connection reset"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	pd := decodeProblem(t, rr)
	require.Equal(t, "https://foundry-erp.dev/problems/internal", pd.Type)
	require.Empty(t, pd.Detail)
}
