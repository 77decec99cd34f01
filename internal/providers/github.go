package providers

import (
	"context"

	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/oauth/github"
)

type GitHubClient interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*github.Profile, error)
}

type GitHub struct {
	client GitHubClient
}

func NewGitHub(client GitHubClient) *GitHub { return &GitHub{client: client} }

func (g *GitHub) Kind() types.Provider { return types.ProviderGitHub }

func (g *GitHub) AuthURL(_ context.Context, state, _ string) (string, error) {
	return g.client.AuthURL(state), nil
}

func (g *GitHub) Verify(ctx context.Context, proof Proof) (types.Identity, error) {
	at := proof.AccessToken
	if at == "" {
		if proof.Code == "" {
			return types.Identity{}, ErrMissingProof
		}
		var err error
		if at, err = g.client.ExchangeCode(ctx, proof.Code); err != nil {
			return types.Identity{}, mapOAuthErr(types.ProviderGitHub, err)
		}
	}

	p, err := g.client.FetchProfile(ctx, at)
	if err != nil {
		return types.Identity{}, mapOAuthErr(types.ProviderGitHub, err)
	}

	name := p.Name
	if name == "" {
		name = p.Login
	}
	return types.Identity{
		Provider:      types.ProviderGitHub,
		ExternalID:    p.ExternalID(),
		Email:         p.Email,
		DisplayName:   name,
		AvatarURL:     p.AvatarURL,
		EmailVerified: p.EmailVerified,
	}.Normalized(), nil
}
