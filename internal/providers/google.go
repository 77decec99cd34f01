package providers

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/oauth/google"
)

// GoogleClient es lo que el adapter usa de oauth/google.
type GoogleClient interface {
	AuthURL(ctx context.Context, state, nonce string) (string, error)
	ExchangeCode(ctx context.Context, code string) (string, error)
	VerifyIDToken(ctx context.Context, raw, expectedNonce string) (*google.IDClaims, error)
}

type Google struct {
	client GoogleClient
}

func NewGoogle(client GoogleClient) *Google { return &Google{client: client} }

func (g *Google) Kind() types.Provider { return types.ProviderGoogle }

func (g *Google) AuthURL(ctx context.Context, state, nonce string) (string, error) {
	u, err := g.client.AuthURL(ctx, state, nonce)
	if err != nil {
		return "", mapOAuthErr(types.ProviderGoogle, err)
	}
	return u, nil
}

// Verify acepta un id_token del cliente o un code a canjear.
func (g *Google) Verify(ctx context.Context, proof Proof) (types.Identity, error) {
	raw := proof.IDToken
	if raw == "" {
		if proof.Code == "" {
			return types.Identity{}, ErrMissingProof
		}
		var err error
		if raw, err = g.client.ExchangeCode(ctx, proof.Code); err != nil {
			return types.Identity{}, mapOAuthErr(types.ProviderGoogle, err)
		}
	}

	claims, err := g.client.VerifyIDToken(ctx, raw, proof.Nonce)
	if err != nil {
		return types.Identity{}, mapOAuthErr(types.ProviderGoogle, err)
	}
	if claims.Email == "" {
		return types.Identity{}, fmt.Errorf("google: %w: no email claim", ErrIncompleteProfile)
	}

	name := claims.Name
	if name == "" {
		name = claims.GivenName
	}
	return types.Identity{
		Provider:      types.ProviderGoogle,
		ExternalID:    claims.Sub,
		Email:         claims.Email,
		DisplayName:   name,
		AvatarURL:     claims.Picture,
		EmailVerified: claims.EmailVerified,
	}.Normalized(), nil
}
