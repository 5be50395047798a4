package otpx_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/aussiebroadwan/bluezscript/pkg/otpx"
	"github.com/stretchr/testify/require"
)

// RFC 6238 Appendix B, SHA1 seed "12345678901234567890", truncated to 6 digits.
func TestCurrentCodeRFC6238Vectors(t *testing.T) {
	secret := cryptox.Secret("12345678901234567890")
	engine := otpx.New()

	vectors := []struct {
		unix int64
		code string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}

	for _, v := range vectors {
		code, err := engine.CurrentCode(secret, time.Unix(v.unix, 0))
		require.NoError(t, err)
		require.Equal(t, v.code, code, "t=%d", v.unix)
	}
}

func TestIsValidWindow(t *testing.T) {
	engine := otpx.New()

	for range 20 {
		secret, err := cryptox.GenerateSecret()
		require.NoError(t, err)

		now := time.Unix(1_700_000_000+int64(len(secret))*7, 0)
		code, err := engine.CurrentCode(secret, now)
		require.NoError(t, err)

		require.True(t, engine.IsValid(secret, code, now))
		require.True(t, engine.IsValid(secret, code, now.Add(30*time.Second)))
		require.True(t, engine.IsValid(secret, code, now.Add(-30*time.Second)))
		require.False(t, engine.IsValid(secret, code, now.Add(61*time.Second)))
		require.False(t, engine.IsValid(secret, code, now.Add(-61*time.Second)))
	}
}

func TestIsValidAcrossRandomTimes(t *testing.T) {
	engine := otpx.New()
	secret, err := cryptox.GenerateSecret()
	require.NoError(t, err)

	for i := range 50 {
		at := time.Unix(1_600_000_000+int64(i)*7919, 0)
		code, err := engine.CurrentCode(secret, at)
		require.NoError(t, err)

		require.True(t, engine.IsValid(secret, code, at))
		require.False(t, engine.IsValid(secret, code, at.Add(61*time.Second)))
	}
}

func TestMatchReportsStep(t *testing.T) {
	engine := otpx.New()
	secret := cryptox.Secret("12345678901234567890")
	at := time.Unix(1111111111, 0)

	code, err := engine.CurrentCode(secret, at)
	require.NoError(t, err)

	step, ok := engine.Match(secret, code, at)
	require.True(t, ok)
	require.Equal(t, engine.Step(at), step)

	// Presented one step late, the code still resolves to the step it was minted for.
	step, ok = engine.Match(secret, code, at.Add(30*time.Second))
	require.True(t, ok)
	require.Equal(t, engine.Step(at), step)
}

func TestMatchRejectsBadInput(t *testing.T) {
	engine := otpx.New()
	secret, err := cryptox.GenerateSecret()
	require.NoError(t, err)
	now := time.Now()

	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		require.False(t, engine.IsValid(secret, code, now), code)
	}
	require.False(t, engine.IsValid(nil, "123456", now))
}

func TestSkewIsClamped(t *testing.T) {
	require.Equal(t, otpx.MaxSkew, otpx.New(otpx.WithSkew(10)).Skew())
	require.Equal(t, uint(0), otpx.New(otpx.WithSkew(0)).Skew())

	engine := otpx.New(otpx.WithSkew(0))
	secret, err := cryptox.GenerateSecret()
	require.NoError(t, err)

	now := time.Unix(1_700_000_010, 0)
	code, err := engine.CurrentCode(secret, now)
	require.NoError(t, err)
	require.True(t, engine.IsValid(secret, code, now))
	require.False(t, engine.IsValid(secret, code, now.Add(30*time.Second)))
}

func TestKeyURL(t *testing.T) {
	engine := otpx.New()
	secret, err := cryptox.GenerateSecret()
	require.NoError(t, err)

	raw, err := engine.KeyURL(secret, "BluezScript", "abc123")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "otpauth", u.Scheme)
	require.Equal(t, "totp", u.Host)
	require.True(t, strings.EqualFold(secret.Base32(), u.Query().Get("secret")))
	require.Equal(t, "BluezScript", u.Query().Get("issuer"))
	require.Equal(t, "30", u.Query().Get("period"))
}
