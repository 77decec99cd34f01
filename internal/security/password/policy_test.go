package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		pwd     string
		ok      bool
		reasons []string
	}{
		{"abc", false, []string{"too_short", "missing_upper", "missing_digit", "missing_special"}},
		{"Abcdef1!", true, nil},
		{"abcdefg1!", false, []string{"missing_upper"}},
		{"ABCDEFG1!", false, []string{"missing_lower"}},
		{"Abcdefgh!", false, []string{"missing_digit"}},
		{"Abcdefg12", false, []string{"missing_special"}},
		{"Abcdef1_", true, nil},
		{"Abcd ef1", true, nil},
		{"Abcdef1!" + strings.Repeat("x", 64), true, nil},
		{"Abcdef1!" + strings.Repeat("x", 65), false, []string{"too_long"}},
	}
	for _, tc := range cases {
		ok, reasons := p.Validate(tc.pwd)
		require.Equal(t, tc.ok, ok, tc.pwd)
		require.Equal(t, tc.reasons, reasons, tc.pwd)
	}
}

func TestPolicyCheck_WrapsSentinel(t *testing.T) {
	err := DefaultPolicy().Check("abc")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrWeakPassword))

	var weak *WeakPasswordError
	require.True(t, errors.As(err, &weak))
	require.Contains(t, weak.Reasons, "too_short")

	require.NoError(t, DefaultPolicy().Check("Abcdef1!"))
}

func TestPolicy_Blacklist(t *testing.T) {
	bl, err := ReadBlacklist(strings.NewReader("# comunes\nPassw0rd!\n\n"))
	require.NoError(t, err)
	require.Equal(t, 1, bl.Len())

	p := DefaultPolicy()
	p.Blacklist = bl
	ok, reasons := p.Validate("passw0rd!")
	require.False(t, ok)
	require.Equal(t, []string{"missing_upper", "blacklisted"}, reasons)

	ok, reasons = p.Validate("Passw0rd!")
	require.False(t, ok)
	require.Equal(t, []string{"blacklisted"}, reasons)

	var nilList *Blacklist
	require.False(t, nilList.Contains("anything"))
}

func TestHasher(t *testing.T) {
	h := NewHasher(4)
	require.Equal(t, 4, h.Cost)

	hash, err := h.Hash("Abcdef1!")
	require.NoError(t, err)
	require.NotEqual(t, "Abcdef1!", hash)

	require.True(t, h.Verify(hash, "Abcdef1!"))
	require.False(t, h.Verify(hash, "Abcdef1?"))
	require.False(t, h.Verify("", "Abcdef1!"))
	require.False(t, h.Verify("not-a-bcrypt-hash", "Abcdef1!"))

	_, err = h.Hash(strings.Repeat("a", MaxBytes+1))
	require.ErrorIs(t, err, ErrWeakPassword)
}
