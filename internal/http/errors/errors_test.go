package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/dropDatabas3/authgate/internal/reconcile"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/session"
)

func TestFromError_Taxonomy(t *testing.T) {
	_, weak := password.DefaultPolicy().Validate("abc")
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{providers.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{session.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{&password.WeakPasswordError{Reasons: weak}, http.StatusUnprocessableEntity, "WEAK_PASSWORD"},
		{reconcile.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
		{fmt.Errorf("google: %w: bad sig", providers.ErrProviderRejected), http.StatusUnauthorized, "PROVIDER_REJECTED"},
		{fmt.Errorf("x: %w", providers.ErrIncompleteProfile), http.StatusUnprocessableEntity, "INCOMPLETE_PROFILE"},
		{fmt.Errorf("x: %w", providers.ErrProviderUnavailable), http.StatusBadGateway, "PROVIDER_UNAVAILABLE"},
		{fmt.Errorf("pg: %w", repository.ErrUnavailable), http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{repository.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{reconcile.ErrUnverifiedEmail, http.StatusForbidden, "EMAIL_NOT_VERIFIED"},
		{stderrors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, tc := range cases {
		got := FromError(tc.err)
		require.Equal(t, tc.status, got.HTTPStatus, tc.code)
		require.Equal(t, tc.code, got.Code)
	}
}

func TestWriteError_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, &password.WeakPasswordError{Reasons: []string{"too_short", "missing_digit"}})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "WEAK_PASSWORD", body["code"])
	require.Equal(t, "too_short,missing_digit", body["detail"])
	require.NotEmpty(t, body["message"])
}

func TestWithDetailCopies(t *testing.T) {
	e := ErrBadRequest.WithDetail("x")
	require.Equal(t, "x", e.Detail)
	require.Empty(t, ErrBadRequest.Detail)
}
