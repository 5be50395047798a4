package cryptox_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	a, err := cryptox.GenerateSecret()
	require.NoError(t, err)
	require.Len(t, a, cryptox.SecretSize)

	b, err := cryptox.GenerateSecret()
	require.NoError(t, err)
	require.NotEqual(t, []byte(a), []byte(b), "secrets should be unique")

	// 20 bytes encode to exactly 32 base32 characters with no padding.
	require.Len(t, a.Base32(), 32)
	require.NotContains(t, a.Base32(), "=")
}

func TestSecretRoundTrip(t *testing.T) {
	for range 100 {
		secret, err := cryptox.GenerateSecret()
		require.NoError(t, err)

		decoded, err := cryptox.DecodeSecret(cryptox.EncodeSecret(secret))
		require.NoError(t, err)
		require.Equal(t, []byte(secret), []byte(decoded))
	}

	// Odd lengths exercise the unpadded tail.
	for n := 1; n <= 40; n++ {
		raw := []byte(strings.Repeat("k", n))
		decoded, err := cryptox.DecodeSecret(cryptox.EncodeSecret(raw))
		require.NoError(t, err, "length %d", n)
		require.Equal(t, raw, []byte(decoded))
	}
}

func TestDecodeSecretIsLenient(t *testing.T) {
	want, err := cryptox.DecodeSecret("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	for _, in := range []string{"jbswy3dpehpk3pxp", " JBSW Y3DP EHPK 3PXP ", "JBSWY3DPEHPK3PXP===="} {
		got, err := cryptox.DecodeSecret(in)
		require.NoError(t, err, in)
		require.Equal(t, []byte(want), []byte(got))
	}
}

func TestDecodeSecretMalformed(t *testing.T) {
	for _, in := range []string{"", "   ", "not base32!", "ABCDEFG1", "A"} {
		_, err := cryptox.DecodeSecret(in)
		require.ErrorIs(t, err, cryptox.ErrMalformedSecret, in)
	}
}

func TestSecretNeverFormats(t *testing.T) {
	secret, err := cryptox.GenerateSecret()
	require.NoError(t, err)

	for _, out := range []string{
		fmt.Sprint(secret),
		fmt.Sprintf("%v", secret),
		fmt.Sprintf("%s", secret),
		fmt.Sprintf("%#v", secret),
		secret.LogValue().String(),
	} {
		require.NotContains(t, out, secret.Base32())
		require.Contains(t, out, "REDACTED")
	}
}

func TestSecretWipe(t *testing.T) {
	secret, err := cryptox.GenerateSecret()
	require.NoError(t, err)

	secret.Wipe()
	require.Equal(t, make([]byte, cryptox.SecretSize), []byte(secret))
}
