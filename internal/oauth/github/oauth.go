// Package github implementa OAuth 2.0 con GitHub. No hay id_token: después
// del canje se consulta /user y, si el email es privado, /user/emails.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/dropDatabas3/authgate/internal/oauth"
)

// Endpoints permite apuntar a GitHub Enterprise o a un servidor de pruebas.
type Endpoints struct {
	AuthURL  string
	TokenURL string
	APIBase  string
}

var DefaultEndpoints = Endpoints{
	AuthURL:  "https://github.com/login/oauth/authorize",
	TokenURL: "https://github.com/login/oauth/access_token",
	APIBase:  "https://api.github.com",
}

type OAuth struct {
	cfg     *oauth2.Config
	apiBase string
	http    *http.Client
}

func New(creds oauth.Credentials, ep Endpoints, hc *http.Client) *OAuth {
	if len(creds.Scopes) == 0 {
		creds.Scopes = []string{"read:user", "user:email"}
	}
	if ep.AuthURL == "" {
		ep.AuthURL = DefaultEndpoints.AuthURL
	}
	if ep.TokenURL == "" {
		ep.TokenURL = DefaultEndpoints.TokenURL
	}
	if ep.APIBase == "" {
		ep.APIBase = DefaultEndpoints.APIBase
	}
	return &OAuth{
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
		apiBase: strings.TrimRight(ep.APIBase, "/"),
		http:    oauth.NewHTTPClient(hc),
	}
}

// AuthURL arma la URL de autorización. GitHub no soporta nonce.
func (g *OAuth) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("allow_signup", "true"))
}

// ExchangeCode canjea el code por un access token.
func (g *OAuth) ExchangeCode(ctx context.Context, code string) (string, error) {
	tok, err := g.cfg.Exchange(oauth.WithClient(ctx, g.http), code)
	if err != nil {
		return "", oauth.ClassifyExchange(err)
	}
	return tok.AccessToken, nil
}

type UserInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// ExternalID es el id numérico como string.
func (u *UserInfo) ExternalID() string { return strconv.FormatInt(u.ID, 10) }

type EmailInfo struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *OAuth) get(ctx context.Context, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBase+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", oauth.ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", oauth.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s: %w", path, oauth.ClassifyStatus(resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: github %s decode: %v", oauth.ErrUnavailable, path, err)
	}
	return nil
}

func (g *OAuth) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	var info UserInfo
	if err := g.get(ctx, "/user", accessToken, &info); err != nil {
		return nil, err
	}
	if info.ID == 0 {
		return nil, fmt.Errorf("%w: github /user without id", oauth.ErrUnavailable)
	}
	return &info, nil
}

// pickEmail elige primary+verified, luego cualquier verified, luego el primero.
func pickEmail(emails []EmailInfo) (*EmailInfo, error) {
	for i := range emails {
		if emails[i].Primary && emails[i].Verified {
			return &emails[i], nil
		}
	}
	for i := range emails {
		if emails[i].Verified {
			return &emails[i], nil
		}
	}
	if len(emails) > 0 && emails[0].Email != "" {
		return &emails[0], nil
	}
	return nil, oauth.ErrNoEmail
}

// Profile es lo que el adapter necesita de GitHub.
type Profile struct {
	UserInfo
	EmailVerified bool
}

// FetchProfile trae /user y completa el email desde /user/emails si hace falta.
// El email público de /user no trae flag de verificación, así que se cruza
// con /user/emails cuando se puede.
func (g *OAuth) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	info, err := g.GetUserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	p := &Profile{UserInfo: *info}

	var emails []EmailInfo
	if err := g.get(ctx, "/user/emails", accessToken, &emails); err != nil {
		if p.Email == "" {
			return nil, err
		}
		return p, nil
	}
	if p.Email != "" {
		for _, e := range emails {
			if strings.EqualFold(e.Email, p.Email) {
				p.EmailVerified = e.Verified
			}
		}
		return p, nil
	}
	e, err := pickEmail(emails)
	if err != nil {
		return nil, err
	}
	p.Email, p.EmailVerified = e.Email, e.Verified
	return p, nil
}
