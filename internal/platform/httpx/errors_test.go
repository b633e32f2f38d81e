package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coursedesk/coursedesk/internal/shared"
)

func respond(err error) (*httptest.ResponseRecorder, ProblemDetail) {
	res := httptest.NewRecorder()
	RespondError(res, err)
	var problem ProblemDetail
	_ = json.Unmarshal(res.Body.Bytes(), &problem)
	return res, problem
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{shared.ErrUnauthorized, http.StatusUnauthorized},
		{shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{shared.ErrForbidden, http.StatusForbidden},
		{shared.ErrNotFound, http.StatusNotFound},
		{shared.ErrMethodNotSupported, http.StatusMethodNotAllowed},
		{shared.StorageError(errors.New("pq: boom")), http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		res, problem := respond(tc.err)
		require.Equal(t, tc.status, res.Code, "error %v", tc.err)
		require.Equal(t, tc.status, problem.Status)
	}
}

func TestRespondErrorNeverLeaksStorageDetail(t *testing.T) {
	res, problem := respond(shared.StorageError(fmt.Errorf("dial tcp 10.0.0.5:5432: refused")))
	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.Empty(t, problem.Detail)
	require.NotContains(t, res.Body.String(), "10.0.0.5")
}

func TestRespondErrorValidation(t *testing.T) {
	res, problem := respond(shared.NewValidationError("title", "due_date"))
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	require.Equal(t, []string{"title", "due_date"}, problem.Fields)
	require.Contains(t, problem.Detail, "title")
}

func TestRespondErrorWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("resolving owner: %w", shared.ErrNotFound)
	res, _ := respond(wrapped)
	require.Equal(t, http.StatusNotFound, res.Code)
}
