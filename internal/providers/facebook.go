package providers

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/oauth/facebook"
)

type FacebookClient interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchMe(ctx context.Context, accessToken string) (*facebook.Me, error)
}

type Facebook struct {
	client FacebookClient
}

func NewFacebook(client FacebookClient) *Facebook { return &Facebook{client: client} }

func (f *Facebook) Kind() types.Provider { return types.ProviderFacebook }

func (f *Facebook) AuthURL(_ context.Context, state, _ string) (string, error) {
	return f.client.AuthURL(state), nil
}

// Verify: Facebook no informa si el email está verificado, así que
// EmailVerified queda en false.
func (f *Facebook) Verify(ctx context.Context, proof Proof) (types.Identity, error) {
	at := proof.AccessToken
	if at == "" {
		if proof.Code == "" {
			return types.Identity{}, ErrMissingProof
		}
		var err error
		if at, err = f.client.ExchangeCode(ctx, proof.Code); err != nil {
			return types.Identity{}, mapOAuthErr(types.ProviderFacebook, err)
		}
	}

	me, err := f.client.FetchMe(ctx, at)
	if err != nil {
		return types.Identity{}, mapOAuthErr(types.ProviderFacebook, err)
	}
	if me.ID == "" || me.Name == "" || me.Email == "" {
		return types.Identity{}, fmt.Errorf("facebook: %w", ErrIncompleteProfile)
	}
	return types.Identity{
		Provider:    types.ProviderFacebook,
		ExternalID:  me.ID,
		Email:       me.Email,
		DisplayName: me.Name,
		AvatarURL:   me.PictureURL(),
	}.Normalized(), nil
}
