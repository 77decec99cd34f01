package password

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist es un set inmutable de passwords comunes (comparación case-insensitive).
// Un *Blacklist nil no contiene nada.
type Blacklist struct {
	data map[string]struct{}
}

// NewBlacklist construye la lista a partir de palabras sueltas.
func NewBlacklist(words ...string) *Blacklist {
	bl := &Blacklist{data: make(map[string]struct{}, len(words))}
	for _, w := range words {
		bl.add(w)
	}
	return bl
}

// LoadBlacklist lee una palabra por línea. Líneas vacías y comentarios (#) se ignoran.
// Path vacío devuelve una lista vacía.
func LoadBlacklist(path string) (*Blacklist, error) {
	if strings.TrimSpace(path) == "" {
		return NewBlacklist(), nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBlacklist(f)
}

// ReadBlacklist es LoadBlacklist sobre un reader arbitrario.
func ReadBlacklist(r io.Reader) (*Blacklist, error) {
	bl := NewBlacklist()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		bl.add(line)
	}
	return bl, sc.Err()
}

func (b *Blacklist) add(w string) {
	w = strings.ToLower(strings.TrimSpace(w))
	if w != "" {
		b.data[w] = struct{}{}
	}
}

// Len retorna la cantidad de entradas.
func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}
