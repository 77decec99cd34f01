// Package facebook implementa el login con Facebook: canje de code (x/oauth2)
// o access token provisto por el cliente, y lectura de /me en la Graph API.
package facebook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/dropDatabas3/authgate/internal/oauth"
)

const graphVersion = "v19.0"

type Endpoints struct {
	AuthURL   string
	TokenURL  string
	GraphBase string
}

var DefaultEndpoints = Endpoints{
	AuthURL:   "https://www.facebook.com/" + graphVersion + "/dialog/oauth",
	TokenURL:  "https://graph.facebook.com/" + graphVersion + "/oauth/access_token",
	GraphBase: "https://graph.facebook.com/" + graphVersion,
}

type Client struct {
	cfg       *oauth2.Config
	graphBase string
	http      *http.Client
}

func New(creds oauth.Credentials, ep Endpoints, hc *http.Client) *Client {
	if len(creds.Scopes) == 0 {
		creds.Scopes = []string{"email", "public_profile"}
	}
	if ep.AuthURL == "" {
		ep.AuthURL = DefaultEndpoints.AuthURL
	}
	if ep.TokenURL == "" {
		ep.TokenURL = DefaultEndpoints.TokenURL
	}
	if ep.GraphBase == "" {
		ep.GraphBase = DefaultEndpoints.GraphBase
	}
	return &Client{
		cfg: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURL,
			Scopes:       creds.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   ep.AuthURL,
				TokenURL:  ep.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		graphBase: strings.TrimRight(ep.GraphBase, "/"),
		http:      oauth.NewHTTPClient(hc),
	}
}

func (c *Client) AuthURL(state string) string {
	return c.cfg.AuthCodeURL(state)
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	tok, err := c.cfg.Exchange(oauth.WithClient(ctx, c.http), code)
	if err != nil {
		return "", oauth.ClassifyExchange(err)
	}
	return tok.AccessToken, nil
}

// Me es la respuesta de /me?fields=id,name,email,picture.
type Me struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func (m *Me) PictureURL() string { return m.Picture.Data.URL }

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// FetchMe lee el perfil. Un token inválido o vencido (4xx de Graph) es rechazo.
func (c *Client) FetchMe(ctx context.Context, accessToken string) (*Me, error) {
	q := url.Values{}
	q.Set("fields", "id,name,email,picture")
	q.Set("access_token", accessToken)
	if c.cfg.ClientSecret != "" {
		q.Set("appsecret_proof", appSecretProof(c.cfg.ClientSecret, accessToken))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.graphBase+"/me?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oauth.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var ge graphError
		_ = json.NewDecoder(resp.Body).Decode(&ge)
		return nil, fmt.Errorf("facebook /me: %w (%s code=%d)", oauth.ClassifyStatus(resp.StatusCode),
			ge.Error.Type, ge.Error.Code)
	}
	var me Me
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, fmt.Errorf("%w: facebook /me decode: %v", oauth.ErrUnavailable, err)
	}
	return &me, nil
}

// appSecretProof es hex(HMAC-SHA256(app_secret, access_token)).
func appSecretProof(secret, token string) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write([]byte(token))
	return hex.EncodeToString(m.Sum(nil))
}
