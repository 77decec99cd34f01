// Package jwt implementa el codec de tokens de sesión: HS256 con un secreto
// de proceso. Rotar el secreto invalida todos los tokens emitidos.
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid: firma inválida, token malformado, alg/iss inesperado o sin sub.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired: token bien formado y firmado, pero exp ya pasó.
	ErrTokenExpired = errors.New("token expired")
)

// MinSecretLen es la longitud mínima aceptada para el secreto HS256.
const MinSecretLen = 32

// reserved no pueden pisarse con claims extra.
var reserved = map[string]struct{}{
	"sub": {}, "iss": {}, "iat": {}, "nbf": {}, "exp": {}, "aud": {}, "jti": {},
}

// Claims es el resultado de Verify.
type Claims struct {
	Subject   string
	Email     string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// Codec firma y verifica tokens de sesión.
type Codec struct {
	secret []byte
	iss    string
	now    func() time.Time
	leeway time.Duration
}

// Option configura el Codec.
type Option func(*Codec)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithLeeway tolera desfasaje de reloj al validar exp/nbf.
func WithLeeway(d time.Duration) Option {
	return func(c *Codec) { c.leeway = d }
}

// NewCodec crea el codec. El secreto debe tener al menos MinSecretLen bytes.
func NewCodec(secret []byte, issuer string, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("jwt: secret must be at least %d bytes", MinSecretLen)
	}
	c := &Codec{
		secret: append([]byte(nil), secret...),
		iss:    strings.TrimSpace(issuer),
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Issuer retorna el iss configurado.
func (c *Codec) Issuer() string { return c.iss }

// Issue firma {sub, extra..., iss, iat, nbf, exp=iat+ttl}.
func (c *Codec) Issue(subject string, extra map[string]any, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, errors.New("jwt: empty subject")
	}
	now := c.now().UTC()
	exp := now.Add(ttl)

	claims := jwtv5.MapClaims{}
	for k, v := range extra {
		if _, ok := reserved[k]; ok {
			continue
		}
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = now.Unix()
	claims["nbf"] = now.Unix()
	claims["exp"] = exp.Unix()
	if c.iss != "" {
		claims["iss"] = c.iss
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

// Verify valida firma, alg, iss y exp. Retorna ErrTokenExpired o ErrTokenInvalid.
func (c *Codec) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenInvalid
	}

	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(c.now),
	}
	if c.leeway > 0 {
		opts = append(opts, jwtv5.WithLeeway(c.leeway))
	}
	if c.iss != "" {
		opts = append(opts, jwtv5.WithIssuer(c.iss))
	}

	mc := jwtv5.MapClaims{}
	_, err := jwtv5.NewParser(opts...).ParseWithClaims(raw, mc, func(t *jwtv5.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if expiredOnly(err) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	sub, _ := mc.GetSubject()
	if sub == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrTokenInvalid)
	}

	out := &Claims{
		Subject: sub,
		Extra:   map[string]any{},
	}
	out.Email, _ = mc["email"].(string)
	out.Issuer, _ = mc.GetIssuer()
	if iat, _ := mc.GetIssuedAt(); iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, _ := mc.GetExpirationTime(); exp != nil {
		out.ExpiresAt = exp.Time
	}
	for k, v := range mc {
		if _, ok := reserved[k]; ok || k == "email" {
			continue
		}
		out.Extra[k] = v
	}
	return out, nil
}

// expiredOnly: jwt/v5 junta todos los fallos de claims en un solo error.
// Vencido sólo cuenta si nada más falló (iss, nbf, iat).
func expiredOnly(err error) bool {
	if !errors.Is(err, jwtv5.ErrTokenExpired) {
		return false
	}
	for _, other := range []error{
		jwtv5.ErrTokenInvalidIssuer,
		jwtv5.ErrTokenNotValidYet,
		jwtv5.ErrTokenUsedBeforeIssued,
		jwtv5.ErrTokenInvalidAudience,
		jwtv5.ErrTokenSignatureInvalid,
		jwtv5.ErrTokenMalformed,
	} {
		if errors.Is(err, other) {
			return false
		}
	}
	return true
}
