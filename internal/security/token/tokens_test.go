package tokens

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(32)
	require.NoError(t, err)

	require.Len(t, a, 43) // 32 bytes base64url sin padding
	require.NotEqual(t, a, b)
}

func TestSHA256Base64URL(t *testing.T) {
	require.Equal(t, SHA256Base64URL("x"), SHA256Base64URL("x"))
	require.NotEqual(t, SHA256Base64URL("x"), SHA256Base64URL("y"))
}
