// Package validation tiene las reglas de formato de los campos de entrada.
package validation

import (
	"regexp"
	"strings"
)

// Email rules:
// - Un solo "@", local y dominio no vacíos.
// - Dominio con al menos un punto, sin espacios.
// - Largo total 3..254.
//
// No intenta cubrir RFC 5322; el dueño del email lo confirma el provider.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail returns true if s looks like a deliverable address.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) > 254 {
		return false
	}
	return emailRe.MatchString(s)
}

const MaxAge = 150

// ValidAge: nil es válido (campo opcional).
func ValidAge(age *int) bool {
	return age == nil || (*age >= 0 && *age <= MaxAge)
}
