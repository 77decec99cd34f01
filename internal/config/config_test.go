package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/security/secretbox"
)

const secret = "0123456789abcdef0123456789abcdef"

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8080", c.Server.Addr)
	require.Equal(t, "memory", c.Storage.Driver)
	require.Equal(t, "memory", c.Cache.Kind)
	require.Equal(t, 2*time.Hour, c.JWT.TTL)
	require.Equal(t, 10*time.Minute, c.Auth.StateTTL)
	require.Equal(t, DevFrontendURL, c.Frontend.RedirectBaseURL)
	require.Equal(t, DevFrontendURL+"/reset-password", c.ResetURL())
	require.False(t, c.Auth.RequireVerifiedEmailForMerge)
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	p := writeYAML(t, `
app:
  env: prod
server:
  addr: ":9000"
storage:
  driver: postgres
  dsn: postgres://u:p@db/authgate
  cache_ttl: 30s
jwt:
  secret: "`+secret+`"
  ttl: 45m
frontend:
  redirect_base_url: https://app.example.com/
providers:
  github:
    client_id: gh-id
    client_secret: gh-secret
    redirect_uri: https://api.example.com/auth/github/callback
`)
	t.Setenv("SERVER_ADDR", ":9100")
	t.Setenv("AUTH_RESET_TTL", "15m")
	t.Setenv("GOOGLE_SCOPES", "openid, email")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, ":9100", c.Server.Addr)
	require.Equal(t, "postgres", c.Storage.Driver)
	require.Equal(t, 30*time.Second, c.Storage.CacheTTL)
	require.Equal(t, 45*time.Minute, c.JWT.TTL)
	require.Equal(t, 15*time.Minute, c.Auth.ResetTTL)
	require.Equal(t, "https://app.example.com", c.Frontend.RedirectBaseURL)
	require.True(t, c.Providers.GitHub.Enabled())
	require.False(t, c.Providers.Google.Enabled())
	require.Equal(t, []string{"openid", "email"}, c.Providers.Google.Scopes)
	require.NoError(t, c.Validate())
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("JWT_TTL", "forever")
	t.Setenv("REDIS_DB", "x")
	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_TTL")
	require.Contains(t, err.Error(), "REDIS_DB")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_JoinsEveryMissingValue(t *testing.T) {
	p := writeYAML(t, `
app:
  env: prod
storage:
  driver: postgres
cache:
  kind: redis
providers:
  google:
    client_id: g-id
`)
	c, err := Load(p)
	require.NoError(t, err)

	err = c.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"jwt.secret is required",
		"frontend.redirect_base_url is required",
		"storage.dsn is required",
		"cache.redis.addr is required",
		"providers.google.client_secret is required",
		"providers.google.redirect_uri is required",
	} {
		require.Contains(t, msg, want)
	}
	require.NotContains(t, msg, "github")
}

func TestValidate_ShortSecretAndUnknownDriver(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	c.JWT.Secret = strings.Repeat("x", 10)
	c.Storage.Driver = "mongo"

	err = c.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least 32 bytes")
	require.Contains(t, err.Error(), `storage.driver "mongo"`)

	c.JWT.Secret = secret
	c.Storage.Driver = "memory"
	require.NoError(t, c.Validate())
}

func TestLoad_RevealsSealedSecrets(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	box, err := secretbox.New(key)
	require.NoError(t, err)
	sealed, err := box.Seal("postgres://u:p@db/authgate")
	require.NoError(t, err)

	t.Setenv(secretbox.EnvVar, base64.StdEncoding.EncodeToString(key))
	t.Setenv("STORAGE_DSN", secretbox.Prefix+sealed)
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@db/authgate", c.Storage.DSN)

	t.Setenv(secretbox.EnvVar, "")
	_, err = Load("")
	require.ErrorIs(t, err, secretbox.ErrNoKey)
}
