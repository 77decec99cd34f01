package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidEmail(t *testing.T) {
	valids := []string{"a@b.co", "ana.perez+x@mail.example.com", "  ana@x.io "}
	for _, v := range valids {
		require.True(t, ValidEmail(v), v)
	}

	invalids := []string{
		"",
		"ana",
		"ana@",
		"@x.com",
		"ana@x",
		"an a@x.com",
		"a@b@c.com",
		strings.Repeat("a", 250) + "@x.com",
	}
	for _, v := range invalids {
		require.False(t, ValidEmail(v), v)
	}
}

func TestValidAge(t *testing.T) {
	n := func(i int) *int { return &i }
	require.True(t, ValidAge(nil))
	require.True(t, ValidAge(n(0)))
	require.True(t, ValidAge(n(30)))
	require.False(t, ValidAge(n(-1)))
	require.False(t, ValidAge(n(MaxAge+1)))
}
