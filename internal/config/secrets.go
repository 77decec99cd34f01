package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dropDatabas3/authgate/internal/security/secretbox"
)

// secretFields devuelve los campos que admiten valor cifrado ("enc:...").
func (c *Config) secretFields() map[string]*string {
	return map[string]*string{
		"storage.dsn":                      &c.Storage.DSN,
		"cache.redis.password":             &c.Cache.Redis.Password,
		"jwt.secret":                       &c.JWT.Secret,
		"smtp.password":                    &c.SMTP.Password,
		"providers.google.client_secret":   &c.Providers.Google.ClientSecret,
		"providers.github.client_secret":   &c.Providers.GitHub.ClientSecret,
		"providers.facebook.client_secret": &c.Providers.Facebook.ClientSecret,
	}
}

// revealSecrets descifra los valores sellados con la clave de
// SECRETBOX_MASTER_KEY. Si ninguno está sellado la clave no hace falta.
func (c *Config) revealSecrets() error {
	fields := c.secretFields()
	sealed := false
	for _, v := range fields {
		if secretbox.IsSealed(*v) {
			sealed = true
			break
		}
	}
	if !sealed {
		return nil
	}

	box, err := secretbox.FromString(os.Getenv(secretbox.EnvVar))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	var errs []error
	for name, v := range fields {
		plain, err := box.Reveal(*v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %w", name, err))
			continue
		}
		*v = plain
	}
	return errors.Join(errs...)
}
