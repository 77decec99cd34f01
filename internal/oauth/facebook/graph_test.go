package facebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/oauth"
)

func newGraph(t *testing.T, meStatus int, me map[string]any) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "EAAB", "token_type": "bearer", "expires_in": 5000})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("appsecret_proof") != appSecretProof("sec", q.Get("access_token")) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(meStatus)
		_ = json.NewEncoder(w).Encode(me)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(oauth.Credentials{ClientID: "app", ClientSecret: "sec", RedirectURL: "http://app/cb"},
		Endpoints{AuthURL: srv.URL + "/dialog/oauth", TokenURL: srv.URL + "/oauth/access_token", GraphBase: srv.URL},
		srv.Client())
	return srv, c
}

func TestFetchMe(t *testing.T) {
	_, c := newGraph(t, http.StatusOK, map[string]any{
		"id": "fb-1", "name": "Fede", "email": "fede@x.com",
		"picture": map[string]any{"data": map[string]any{"url": "https://p/1.jpg"}},
	})

	at, err := c.ExchangeCode(context.Background(), "code")
	require.NoError(t, err)
	require.Equal(t, "EAAB", at)

	me, err := c.FetchMe(context.Background(), at)
	require.NoError(t, err)
	require.Equal(t, "fb-1", me.ID)
	require.Equal(t, "fede@x.com", me.Email)
	require.Equal(t, "https://p/1.jpg", me.PictureURL())
}

func TestFetchMe_InvalidToken(t *testing.T) {
	_, c := newGraph(t, http.StatusBadRequest, map[string]any{
		"error": map[string]any{"message": "Invalid OAuth access token.", "type": "OAuthException", "code": 190},
	})
	_, err := c.FetchMe(context.Background(), "bad")
	require.ErrorIs(t, err, oauth.ErrRejected)
}

func TestFetchMe_GraphDown(t *testing.T) {
	_, c := newGraph(t, http.StatusInternalServerError, map[string]any{})
	_, err := c.FetchMe(context.Background(), "tok")
	require.ErrorIs(t, err, oauth.ErrUnavailable)
}
