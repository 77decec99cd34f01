package password

import (
	"errors"
	"strings"
	"unicode"
)

// ErrWeakPassword se retorna cuando el password no cumple la política.
var ErrWeakPassword = errors.New("weak password")

// MaxBytes es el límite de bcrypt; más largo no se puede hashear.
const MaxBytes = 72

// WeakPasswordError detalla qué reglas fallaron. errors.Is(err, ErrWeakPassword) es true.
type WeakPasswordError struct {
	Reasons []string
}

func (e *WeakPasswordError) Error() string {
	return "weak password: " + strings.Join(e.Reasons, ",")
}

func (e *WeakPasswordError) Is(target error) bool { return target == ErrWeakPassword }

// Policy define los requisitos mínimos de un password.
type Policy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool // cualquier caracter que no sea letra ni dígito
	Blacklist      *Blacklist
}

// DefaultPolicy: 8+ caracteres con minúscula, mayúscula, dígito y un no-alfanumérico.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}
}

// Validate retorna ok=false junto con las razones (too_short, too_long, missing_upper, ...).
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	if len(s) > MaxBytes {
		reasons = append(reasons, "too_long")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case !unicode.IsLetter(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSpecial && !hasS {
		reasons = append(reasons, "missing_special")
	}
	if p.Blacklist.Contains(s) {
		reasons = append(reasons, "blacklisted")
	}
	return len(reasons) == 0, reasons
}

// Check es Validate en forma de error: nil o *WeakPasswordError.
func (p Policy) Check(s string) error {
	if ok, reasons := p.Validate(s); !ok {
		return &WeakPasswordError{Reasons: reasons}
	}
	return nil
}
