package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/oauth"
)

type fakeGitHub struct {
	user       map[string]any
	emails     []EmailInfo
	userStatus int
}

func (f *fakeGitHub) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.FormValue("code") != "good" {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_x", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_x" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.userStatus != 0 {
			w.WriteHeader(f.userStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(f.user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(f.emails)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *OAuth {
	return New(oauth.Credentials{ClientID: "cid", ClientSecret: "sec", RedirectURL: "http://app/cb"},
		Endpoints{
			AuthURL:  srv.URL + "/login/oauth/authorize",
			TokenURL: srv.URL + "/login/oauth/access_token",
			APIBase:  srv.URL,
		}, srv.Client())
}

func TestExchangeAndFetchProfile_PrivateEmail(t *testing.T) {
	f := &fakeGitHub{
		user: map[string]any{"id": 42, "login": "octo", "name": "Octo Cat", "avatar_url": "https://a/42"},
		emails: []EmailInfo{
			{Email: "old@x.com", Verified: true},
			{Email: "octo@x.com", Primary: true, Verified: true},
		},
	}
	g := newTestClient(f.server(t))
	ctx := context.Background()

	at, err := g.ExchangeCode(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, "gho_x", at)

	p, err := g.FetchProfile(ctx, at)
	require.NoError(t, err)
	require.Equal(t, "42", p.ExternalID())
	require.Equal(t, "octo@x.com", p.Email)
	require.True(t, p.EmailVerified)
	require.Equal(t, "https://a/42", p.AvatarURL)
}

func TestFetchProfile_PublicEmailCrossChecked(t *testing.T) {
	f := &fakeGitHub{
		user:   map[string]any{"id": 7, "name": "N", "email": "Pub@x.com"},
		emails: []EmailInfo{{Email: "pub@x.com", Primary: true, Verified: false}},
	}
	g := newTestClient(f.server(t))

	p, err := g.FetchProfile(context.Background(), "gho_x")
	require.NoError(t, err)
	require.Equal(t, "Pub@x.com", p.Email)
	require.False(t, p.EmailVerified)
}

func TestFetchProfile_NoEmail(t *testing.T) {
	f := &fakeGitHub{user: map[string]any{"id": 7}, emails: []EmailInfo{}}
	g := newTestClient(f.server(t))

	_, err := g.FetchProfile(context.Background(), "gho_x")
	require.ErrorIs(t, err, oauth.ErrNoEmail)
}

func TestExchangeCode_Rejected(t *testing.T) {
	g := newTestClient((&fakeGitHub{}).server(t))
	_, err := g.ExchangeCode(context.Background(), "nope")
	require.ErrorIs(t, err, oauth.ErrRejected)
}

func TestGetUserInfo_StatusMapping(t *testing.T) {
	f := &fakeGitHub{userStatus: http.StatusBadGateway}
	g := newTestClient(f.server(t))
	_, err := g.GetUserInfo(context.Background(), "gho_x")
	require.ErrorIs(t, err, oauth.ErrUnavailable)

	_, err = g.GetUserInfo(context.Background(), "revoked")
	require.ErrorIs(t, err, oauth.ErrRejected)
}

func TestPickEmail(t *testing.T) {
	e, err := pickEmail([]EmailInfo{{Email: "a@x"}, {Email: "b@x", Verified: true}})
	require.NoError(t, err)
	require.Equal(t, "b@x", e.Email)

	e, err = pickEmail([]EmailInfo{{Email: "a@x"}})
	require.NoError(t, err)
	require.Equal(t, "a@x", e.Email)
}

func TestAuthURL(t *testing.T) {
	g := New(oauth.Credentials{ClientID: "cid", RedirectURL: "http://app/cb"}, Endpoints{}, nil)
	u, err := url.Parse(g.AuthURL("xyz"))
	require.NoError(t, err)
	require.Equal(t, "github.com", u.Host)
	require.Equal(t, "xyz", u.Query().Get("state"))
	require.Equal(t, "read:user user:email", u.Query().Get("scope"))
}
