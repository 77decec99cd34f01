package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost es el costo bcrypt usado si no se configura otro.
const DefaultCost = 10

// Hasher encapsula el hash lento usado para las credenciales.
type Hasher struct {
	Cost int
	// dummy se compara cuando no hay hash real, para igualar tiempos de respuesta.
	dummy []byte
}

// NewHasher crea un Hasher bcrypt. cost<=0 usa DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("authgate-dummy-password"), cost)
	return &Hasher{Cost: cost, dummy: dummy}
}

// Hash genera el hash bcrypt del password.
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", &WeakPasswordError{Reasons: []string{"too_long"}}
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara en tiempo constante. Un hash vacío compara contra el dummy y siempre falla.
func (h *Hasher) Verify(hash, plain string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
