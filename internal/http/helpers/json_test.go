package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	var v struct {
		Email string `json:"email"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com","extra":1}`))
	r.Header.Set("Content-Type", "application/json")
	require.True(t, ReadJSON(httptest.NewRecorder(), r, &v))
	require.Equal(t, "a@x.com", v.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	require.False(t, ReadJSON(w, r, &v))
	require.Equal(t, http.StatusBadRequest, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`email=a`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	require.False(t, ReadJSON(w, r, &v))
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, BearerToken(r))
	r.Header.Set("Authorization", "bearer abc.def ")
	require.Equal(t, "abc.def", BearerToken(r))
	r.Header.Set("Authorization", "Basic Zm9v")
	require.Empty(t, BearerToken(r))
}
