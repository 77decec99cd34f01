// Package secretbox cifra secretos de configuración con AES-256-GCM.
//
// Formato: base64(nonce)|base64(ciphertext). En config los valores cifrados
// llevan el prefijo "enc:" y se abren con SECRETBOX_MASTER_KEY al cargar.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// EnvVar es la variable de entorno con la clave maestra.
	EnvVar = "SECRETBOX_MASTER_KEY"
	// Prefix marca un valor de config cifrado.
	Prefix = "enc:"

	keyLen   = 32 // AES-256
	nonceLen = 12
	sep      = "|"
)

var (
	ErrNoKey        = errors.New("secretbox: " + EnvVar + " no seteada")
	ErrInvalidKey   = errors.New("secretbox: clave inválida")
	ErrBadFormat    = errors.New("secretbox: formato inválido, esperado base64(nonce)|base64(ciphertext)")
	ErrDecryptFailed = errors.New("secretbox: no se pudo descifrar")
)

// Box cifra y descifra con una clave fija.
type Box struct {
	aead cipher.AEAD
}

// ParseKey acepta la clave en base64 (con o sin padding) o hex; debe dar 32 bytes.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrNoKey
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == keyLen {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil && len(b) == keyLen {
		return b, nil
	}
	if len(s) == 2*keyLen {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: se requieren %d bytes en base64 o hex", ErrInvalidKey, keyLen)
}

// New arma un Box con una clave cruda de 32 bytes.
func New(key []byte) (*Box, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("%w: %d bytes (requiere %d)", ErrInvalidKey, len(key), keyLen)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// FromString es ParseKey + New.
func FromString(key string) (*Box, error) {
	k, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	return New(k)
}

// Seal cifra plain con un nonce aleatorio.
func (b *Box) Seal(plain string) (string, error) {
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}
	ct := b.aead.Seal(nil, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// Open descifra un valor producido por Seal.
func (b *Box) Open(sealed string) (string, error) {
	parts := strings.Split(sealed, sep)
	if len(parts) != 2 {
		return "", ErrBadFormat
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceLen {
		return "", ErrBadFormat
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrBadFormat
	}
	pt, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(pt), nil
}

// IsSealed indica si v lleva el prefijo de valor cifrado.
func IsSealed(v string) bool { return strings.HasPrefix(v, Prefix) }

// Reveal devuelve v tal cual si no está cifrado; si lo está, lo abre con b.
func (b *Box) Reveal(v string) (string, error) {
	if !IsSealed(v) {
		return v, nil
	}
	return b.Open(strings.TrimPrefix(v, Prefix))
}
