// Package google implementa el login con Google: authorization code via
// x/oauth2 y verificación local del id_token (RS256 contra el JWKS publicado).
package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/authgate/internal/oauth"
)

const DefaultDiscoveryURL = "https://accounts.google.com/.well-known/openid-configuration"

var googleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

const (
	discoveryTTL  = 24 * time.Hour
	jwksTTL       = time.Hour
	minKidRefresh = 30 * time.Second
	idTokenLeeway = 30 * time.Second
	discoveryKey  = "discovery"
	jwksFlightKey = "jwks"
	defaultScopes = "openid email profile"
)

type discoveryDoc struct {
	Issuer        string `json:"issuer"`
	AuthEndpoint  string `json:"authorization_endpoint"`
	TokenEndpoint string `json:"token_endpoint"`
	JWKSURI       string `json:"jwks_uri"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type OIDC struct {
	creds        oauth.Credentials
	discoveryURL string
	http         *http.Client
	now          func() time.Time

	sf singleflight.Group

	mu       sync.RWMutex
	disc     *discoveryDoc
	discAt   time.Time
	keys     map[string]*rsa.PublicKey
	jwksAt   time.Time
	jwksETag string
}

type Option func(*OIDC)

func WithDiscoveryURL(u string) Option { return func(g *OIDC) { g.discoveryURL = u } }
func WithHTTPClient(c *http.Client) Option {
	return func(g *OIDC) { g.http = c }
}
func WithClock(now func() time.Time) Option { return func(g *OIDC) { g.now = now } }

func New(creds oauth.Credentials, opts ...Option) *OIDC {
	if len(creds.Scopes) == 0 {
		creds.Scopes = strings.Fields(defaultScopes)
	}
	g := &OIDC{
		creds:        creds,
		discoveryURL: DefaultDiscoveryURL,
		now:          time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	g.http = oauth.NewHTTPClient(g.http)
	return g
}

func (g *OIDC) ClientID() string { return g.creds.ClientID }

func (g *OIDC) discovery(ctx context.Context) (*discoveryDoc, error) {
	g.mu.RLock()
	disc, at := g.disc, g.discAt
	g.mu.RUnlock()
	if disc != nil && g.now().Sub(at) < discoveryTTL {
		return disc, nil
	}

	v, err, _ := g.sf.Do(discoveryKey, func() (any, error) {
		var dd discoveryDoc
		if err := g.getJSON(ctx, g.discoveryURL, &dd); err != nil {
			return nil, err
		}
		if dd.AuthEndpoint == "" || dd.TokenEndpoint == "" || dd.JWKSURI == "" {
			return nil, fmt.Errorf("%w: incomplete discovery document", oauth.ErrUnavailable)
		}
		g.mu.Lock()
		g.disc, g.discAt = &dd, g.now()
		g.mu.Unlock()
		return &dd, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*discoveryDoc), nil
}

func (g *OIDC) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", oauth.ErrUnavailable, err)
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", oauth.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: %s http %d", oauth.ErrUnavailable, u, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", oauth.ErrUnavailable, u, err)
	}
	return nil
}

// refreshJWKS baja el JWKS (If-None-Match con el ETag previo). Las llamadas
// concurrentes comparten un solo request.
func (g *OIDC) refreshJWKS(ctx context.Context, uri string) error {
	_, err, _ := g.sf.Do(jwksFlightKey, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", oauth.ErrUnavailable, err)
		}
		g.mu.RLock()
		etag := g.jwksETag
		hasKeys := g.keys != nil
		g.mu.RUnlock()
		if etag != "" && hasKeys {
			req.Header.Set("If-None-Match", etag)
		}
		resp, err := g.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: jwks: %v", oauth.ErrUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotModified {
			g.mu.Lock()
			g.jwksAt = g.now()
			g.mu.Unlock()
			return nil, nil
		}
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("%w: jwks http %d", oauth.ErrUnavailable, resp.StatusCode)
		}
		var set struct {
			Keys []jwk `json:"keys"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
			return nil, fmt.Errorf("%w: jwks decode: %v", oauth.ErrUnavailable, err)
		}
		keys := make(map[string]*rsa.PublicKey, len(set.Keys))
		for _, k := range set.Keys {
			if !strings.EqualFold(k.Kty, "RSA") {
				continue
			}
			pk, err := rsaKey(k)
			if err != nil {
				continue
			}
			keys[k.Kid] = pk
		}
		g.mu.Lock()
		g.keys, g.jwksAt, g.jwksETag = keys, g.now(), resp.Header.Get("ETag")
		g.mu.Unlock()
		return nil, nil
	})
	return err
}

func rsaKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	e := 65537
	if len(eb) > 0 {
		e = 0
		for _, b := range eb {
			e = (e << 8) | int(b)
		}
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}

func (g *OIDC) keyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	disc, err := g.discovery(ctx)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	key, ok := g.keys[kid]
	age := g.now().Sub(g.jwksAt)
	loaded := g.keys != nil
	g.mu.RUnlock()

	// rotación: kid desconocido fuerza refresh, con un piso para no martillar el endpoint
	if !loaded || age >= jwksTTL || (!ok && age >= minKidRefresh) {
		if err := g.refreshJWKS(ctx, disc.JWKSURI); err != nil {
			return nil, err
		}
		g.mu.RLock()
		key, ok = g.keys[kid]
		g.mu.RUnlock()
	}
	if !ok {
		return nil, fmt.Errorf("%w: unknown kid %q", oauth.ErrRejected, kid)
	}
	return key, nil
}

func (g *OIDC) config(disc *discoveryDoc) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.creds.ClientID,
		ClientSecret: g.creds.ClientSecret,
		RedirectURL:  g.creds.RedirectURL,
		Scopes:       g.creds.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   disc.AuthEndpoint,
			TokenURL:  disc.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthURL construye la URL de autorización.
func (g *OIDC) AuthURL(ctx context.Context, state, nonce string) (string, error) {
	disc, err := g.discovery(ctx)
	if err != nil {
		return "", err
	}
	opts := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	}
	if nonce != "" {
		opts = append(opts, oauth2.SetAuthURLParam("nonce", nonce))
	}
	return g.config(disc).AuthCodeURL(state, opts...), nil
}

// ExchangeCode canjea el code y devuelve el id_token crudo.
func (g *OIDC) ExchangeCode(ctx context.Context, code string) (string, error) {
	disc, err := g.discovery(ctx)
	if err != nil {
		return "", err
	}
	tok, err := g.config(disc).Exchange(oauth.WithClient(ctx, g.http), code)
	if err != nil {
		return "", oauth.ClassifyExchange(err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", fmt.Errorf("%w: token response without id_token", oauth.ErrRejected)
	}
	return idToken, nil
}

type IDClaims struct {
	Sub           string
	Iss           string
	Email         string
	EmailVerified bool
	Name          string
	GivenName     string
	FamilyName    string
	Picture       string
	Nonce         string
}

// VerifyIDToken valida firma, iss, aud, exp y (si se pide) nonce.
func (g *OIDC) VerifyIDToken(ctx context.Context, raw, expectedNonce string) (*IDClaims, error) {
	disc, err := g.discovery(ctx)
	if err != nil {
		return nil, err
	}

	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{"RS256"}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithAudience(g.creds.ClientID),
		jwtv5.WithLeeway(idTokenLeeway),
		jwtv5.WithTimeFunc(g.now),
	)
	claims := jwtv5.MapClaims{}
	_, err = parser.ParseWithClaims(raw, claims, func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return g.keyForKid(ctx, kid)
	})
	if err != nil {
		if errors.Is(err, oauth.ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: id_token: %v", oauth.ErrRejected, err)
	}

	iss := strClaim(claims, "iss")
	if !issuerAllowed(iss, disc.Issuer) {
		return nil, fmt.Errorf("%w: bad iss %q", oauth.ErrRejected, iss)
	}
	if expectedNonce != "" && strClaim(claims, "nonce") != expectedNonce {
		return nil, fmt.Errorf("%w: bad nonce", oauth.ErrRejected)
	}
	sub := strClaim(claims, "sub")
	if sub == "" {
		return nil, fmt.Errorf("%w: id_token without sub", oauth.ErrRejected)
	}

	return &IDClaims{
		Sub:           sub,
		Iss:           iss,
		Email:         strClaim(claims, "email"),
		EmailVerified: boolClaim(claims, "email_verified"),
		Name:          strClaim(claims, "name"),
		GivenName:     strClaim(claims, "given_name"),
		FamilyName:    strClaim(claims, "family_name"),
		Picture:       strClaim(claims, "picture"),
		Nonce:         strClaim(claims, "nonce"),
	}, nil
}

func issuerAllowed(iss, discovered string) bool {
	if iss == "" {
		return false
	}
	if iss == discovered {
		return true
	}
	for _, v := range googleIssuers {
		if iss == v {
			return true
		}
	}
	return false
}

func strClaim(m jwtv5.MapClaims, k string) string {
	s, _ := m[k].(string)
	return s
}

// Google a veces manda email_verified como string.
func boolClaim(m jwtv5.MapClaims, k string) bool {
	switch v := m[k].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}
