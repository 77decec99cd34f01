// Package types define tipos de dominio compartidos entre paquetes.
package types

import "strings"

// Provider identifica el origen de una identidad. Es un conjunto cerrado.
type Provider string

const (
	ProviderPassword Provider = "password"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderGitHub   Provider = "github"
)

// AllProviders lista los providers soportados en orden estable.
var AllProviders = []Provider{ProviderPassword, ProviderGoogle, ProviderFacebook, ProviderGitHub}

// IsValid retorna true si el provider pertenece al conjunto soportado.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderPassword, ProviderGoogle, ProviderFacebook, ProviderGitHub:
		return true
	}
	return false
}

// IsOAuth retorna true para los providers externos.
func (p Provider) IsOAuth() bool {
	return p.IsValid() && p != ProviderPassword
}

func (p Provider) String() string { return string(p) }

// ParseProvider normaliza y valida un nombre de provider (ej: path param).
func ParseProvider(s string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	return p, p.IsValid()
}
