package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// SecretSize is the shared secret length in bytes (160 bits, the RFC 4226
// recommended HMAC-SHA1 key length).
const SecretSize = 20

// ErrMalformedSecret is returned when a textual secret is not valid base32.
var ErrMalformedSecret = errors.New("cryptox: malformed secret")

// b32 is the transport encoding for shared secrets: RFC 4648 base32 without
// padding, which is what authenticator apps and otpauth URLs expect.
var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Secret is raw shared secret material. It never renders its contents through
// fmt or slog; use Base32 for the one place the plaintext leaves the process.
type Secret []byte

// GenerateSecret draws SecretSize bytes from the operating system CSPRNG.
func GenerateSecret() (Secret, error) {
	buf := make([]byte, SecretSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	return Secret(buf), nil
}

// EncodeSecret returns the base32 text form of raw secret bytes.
func EncodeSecret(raw []byte) string {
	return b32.EncodeToString(raw)
}

// DecodeSecret parses the base32 text form. Lower case, embedded spaces and
// trailing padding are tolerated since people retype these by hand.
func DecodeSecret(s string) (Secret, error) {
	clean := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	clean = strings.TrimRight(clean, "=")
	if clean == "" {
		return nil, ErrMalformedSecret
	}

	raw, err := b32.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}
	if len(raw) == 0 {
		return nil, ErrMalformedSecret
	}
	return Secret(raw), nil
}

// Base32 returns the transport encoding of the secret.
func (s Secret) Base32() string { return EncodeSecret(s) }

// Wipe zeroes the secret in place.
func (s Secret) Wipe() {
	for i := range s {
		s[i] = 0
	}
}

func (s Secret) String() string { return "[REDACTED]" }

func (s Secret) GoString() string { return "cryptox.Secret([REDACTED])" }

func (s Secret) LogValue() slog.Value { return slog.StringValue("[REDACTED]") }
