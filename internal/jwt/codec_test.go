package jwt

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, "authgate-test", opts...)
	require.NoError(t, err)
	return c
}

func TestNewCodec_ShortSecret(t *testing.T) {
	_, err := NewCodec([]byte("short"), "x")
	require.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	tok, exp, err := c.Issue("u1", map[string]any{"email": "a@x.com", "sub": "hijack", "role": "user"}, time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	claims, err := c.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, "authgate-test", claims.Issuer)
	require.Equal(t, "user", claims.Extra["role"])
	require.NotContains(t, claims.Extra, "sub")
	require.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestVerify_Expired(t *testing.T) {
	past := time.Now().Add(-3 * time.Hour)
	issuer := newTestCodec(t, WithClock(func() time.Time { return past }))
	tok, _, err := issuer.Issue("u1", nil, time.Hour)
	require.NoError(t, err)

	_, err = newTestCodec(t).Verify(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
	require.False(t, errors.Is(err, ErrTokenInvalid))
}

func TestVerify_NegativeTTLIsExpired(t *testing.T) {
	c := newTestCodec(t)
	tok, _, err := c.Issue("u1", nil, -time.Minute)
	require.NoError(t, err)

	_, err = c.Verify(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Leeway(t *testing.T) {
	c := newTestCodec(t, WithLeeway(time.Minute))
	tok, _, err := c.Issue("u1", nil, -10*time.Second)
	require.NoError(t, err)

	_, err = c.Verify(tok)
	require.NoError(t, err)
}

func TestVerify_Tampered(t *testing.T) {
	c := newTestCodec(t)
	tok, _, err := c.Issue("u1", map[string]any{"email": "a@x.com"}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"u1"`, `"u2"`, 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	_, err = c.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.False(t, errors.Is(err, ErrTokenExpired))
}

func TestVerify_ExpiredWithWrongIssuerIsInvalid(t *testing.T) {
	other, err := NewCodec(testSecret, "otro-issuer")
	require.NoError(t, err)
	tok, _, err := other.Issue("u1", nil, -time.Hour)
	require.NoError(t, err)

	_, err = newTestCodec(t).Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.NotErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Malformed(t *testing.T) {
	c := newTestCodec(t)
	for _, raw := range []string{"", "abc", "a.b.c", "   "} {
		_, err := c.Verify(raw)
		require.ErrorIs(t, err, ErrTokenInvalid, raw)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	other, err := NewCodec([]byte("ffffffffffffffffffffffffffffffff"), "authgate-test")
	require.NoError(t, err)
	tok, _, err := other.Issue("u1", nil, time.Hour)
	require.NoError(t, err)

	_, err = newTestCodec(t).Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_WrongIssuer(t *testing.T) {
	other, err := NewCodec(testSecret, "someone-else")
	require.NoError(t, err)
	tok, _, err := other.Issue("u1", nil, time.Hour)
	require.NoError(t, err)

	_, err = newTestCodec(t).Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsNoneAndOtherAlgs(t *testing.T) {
	c := newTestCodec(t)
	claims := jwtv5.MapClaims{"sub": "u1", "iss": "authgate-test", "exp": time.Now().Add(time.Hour).Unix()}

	none, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.Verify(none)
	require.ErrorIs(t, err, ErrTokenInvalid)

	hs512, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, err = c.Verify(hs512)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_MissingSubject(t *testing.T) {
	c := newTestCodec(t)
	claims := jwtv5.MapClaims{"iss": "authgate-test", "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = c.Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssue_EmptySubject(t *testing.T) {
	_, _, err := newTestCodec(t).Issue(" ", nil, time.Hour)
	require.Error(t, err)
}
