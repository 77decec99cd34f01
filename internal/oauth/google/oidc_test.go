package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/oauth"
)

type fakeGoogle struct {
	srv       *httptest.Server
	key       *rsa.PrivateKey
	kid       string
	jwksHits  atomic.Int32
	idToken   string
	tokenCode int
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	f := &fakeGoogle{key: key, kid: "k1", tokenCode: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"issuer":                 "https://accounts.google.com",
			"authorization_endpoint": f.srv.URL + "/auth",
			"token_endpoint":         f.srv.URL + "/token",
			"jwks_uri":               f.srv.URL + "/certs",
		})
	})
	mux.HandleFunc("/certs", func(w http.ResponseWriter, r *http.Request) {
		f.jwksHits.Add(1)
		pub := f.key.PublicKey
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"kid": f.kid,
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if f.tokenCode != http.StatusOK {
			w.WriteHeader(f.tokenCode)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		if r.FormValue("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at", "token_type": "Bearer", "expires_in": 3600, "id_token": f.idToken,
		})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGoogle) sign(t *testing.T, claims jwtv5.MapClaims) string {
	t.Helper()
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tok.Header["kid"] = f.kid
	s, err := tok.SignedString(f.key)
	require.NoError(t, err)
	return s
}

func validClaims() jwtv5.MapClaims {
	return jwtv5.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            "client-1",
		"sub":            "g-123",
		"email":          "Ana@Example.com",
		"email_verified": true,
		"name":           "Ana",
		"picture":        "https://img/ana.png",
		"exp":            time.Now().Add(time.Hour).Unix(),
		"iat":            time.Now().Unix(),
	}
}

func newClient(f *fakeGoogle) *OIDC {
	return New(oauth.Credentials{ClientID: "client-1", ClientSecret: "s", RedirectURL: "http://app/cb"},
		WithDiscoveryURL(f.srv.URL+"/.well-known/openid-configuration"),
		WithHTTPClient(f.srv.Client()))
}

func TestVerifyIDToken_OK(t *testing.T) {
	f := newFakeGoogle(t)
	g := newClient(f)

	c, err := g.VerifyIDToken(context.Background(), f.sign(t, validClaims()), "")
	require.NoError(t, err)
	require.Equal(t, "g-123", c.Sub)
	require.Equal(t, "Ana@Example.com", c.Email)
	require.True(t, c.EmailVerified)
	require.Equal(t, "https://img/ana.png", c.Picture)

	// segunda verificación usa el JWKS cacheado
	_, err = g.VerifyIDToken(context.Background(), f.sign(t, validClaims()), "")
	require.NoError(t, err)
	require.Equal(t, int32(1), f.jwksHits.Load())
}

func TestVerifyIDToken_Rejections(t *testing.T) {
	f := newFakeGoogle(t)
	g := newClient(f)
	ctx := context.Background()

	cases := map[string]func(jwtv5.MapClaims){
		"wrong audience": func(c jwtv5.MapClaims) { c["aud"] = "other" },
		"wrong issuer":   func(c jwtv5.MapClaims) { c["iss"] = "https://evil.example" },
		"expired":        func(c jwtv5.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() },
		"missing sub":    func(c jwtv5.MapClaims) { delete(c, "sub") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validClaims()
			mutate(c)
			_, err := g.VerifyIDToken(ctx, f.sign(t, c), "")
			require.ErrorIs(t, err, oauth.ErrRejected)
		})
	}

	t.Run("bad signature", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		tok := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, validClaims())
		tok.Header["kid"] = f.kid
		raw, err := tok.SignedString(other)
		require.NoError(t, err)
		_, err = g.VerifyIDToken(ctx, raw, "")
		require.ErrorIs(t, err, oauth.ErrRejected)
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		c := validClaims()
		c["nonce"] = "n1"
		_, err := g.VerifyIDToken(ctx, f.sign(t, c), "n2")
		require.ErrorIs(t, err, oauth.ErrRejected)
	})
}

func TestVerifyIDToken_DiscoveryDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := New(oauth.Credentials{ClientID: "client-1"}, WithDiscoveryURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := g.VerifyIDToken(context.Background(), "a.b.c", "")
	require.ErrorIs(t, err, oauth.ErrUnavailable)
}

func TestExchangeCode(t *testing.T) {
	f := newFakeGoogle(t)
	g := newClient(f)
	f.idToken = f.sign(t, validClaims())

	raw, err := g.ExchangeCode(context.Background(), "good-code")
	require.NoError(t, err)
	require.Equal(t, f.idToken, raw)

	f.tokenCode = http.StatusBadRequest
	_, err = g.ExchangeCode(context.Background(), "bad-code")
	require.ErrorIs(t, err, oauth.ErrRejected)
}

func TestAuthURL(t *testing.T) {
	f := newFakeGoogle(t)
	g := newClient(f)

	raw, err := g.AuthURL(context.Background(), "st4te", "n0nce")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/auth", u.Path)
	q := u.Query()
	require.Equal(t, "client-1", q.Get("client_id"))
	require.Equal(t, "st4te", q.Get("state"))
	require.Equal(t, "n0nce", q.Get("nonce"))
	require.Equal(t, "http://app/cb", q.Get("redirect_uri"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "consent", q.Get("prompt"))
}
