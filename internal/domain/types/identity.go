package types

import "strings"

// Identity es la tupla verificada que produce un provider.
// Es efímera: nunca se persiste tal cual.
type Identity struct {
	Provider Provider
	// ExternalID es el id estable dentro del provider. Vacío para password.
	ExternalID    string
	Email         string
	DisplayName   string
	AvatarURL     string
	EmailVerified bool
}

// NormalizeEmail aplica trim + lowercase. Es la clave natural de los perfiles.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalized devuelve una copia con el email normalizado y los campos opcionales recortados.
func (i Identity) Normalized() Identity {
	i.Email = NormalizeEmail(i.Email)
	i.DisplayName = strings.TrimSpace(i.DisplayName)
	i.AvatarURL = strings.TrimSpace(i.AvatarURL)
	i.ExternalID = strings.TrimSpace(i.ExternalID)
	return i
}
