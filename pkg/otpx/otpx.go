// Package otpx derives and checks the time-stepped one-time codes that paired
// devices present with every trigger.
//
// Codes follow RFC 6238 with HMAC-SHA1, 30 second steps and 6 digits, which
// is what the companion app and ordinary authenticator apps produce. The
// accepted clock drift is capped at MaxSkew steps either side.
package otpx

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultPeriod = 30 * time.Second
	DefaultDigits = 6

	// MaxSkew bounds the drift window. Wider windows weaken replay
	// resistance, so larger requests are clamped rather than honoured.
	MaxSkew uint = 1
)

var ErrInvalidSecret = errors.New("otpx: invalid secret")

// Engine computes and validates codes. The zero value is not usable; build one with New.
type Engine struct {
	period time.Duration
	skew   uint
}

type Option func(*Engine)

// WithSkew sets the number of steps accepted either side of the current one.
func WithSkew(steps uint) Option {
	return func(e *Engine) {
		e.skew = min(steps, MaxSkew)
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{period: DefaultPeriod, skew: MaxSkew}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Period() time.Duration { return e.period }

func (e *Engine) Skew() uint { return e.skew }

func (e *Engine) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(e.period / time.Second),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// CurrentCode returns the code for the step containing at.
func (e *Engine) CurrentCode(secret cryptox.Secret, at time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrInvalidSecret
	}
	code, err := totp.GenerateCodeCustom(secret.Base32(), at, e.validateOpts())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return code, nil
}

// Step returns the time-step counter containing at.
func (e *Engine) Step(at time.Time) uint64 {
	return uint64(at.Unix()) / uint64(e.period/time.Second)
}

// Match reports whether code is valid for any step within the skew window
// around at, and if so which step it belongs to. Every candidate is compared
// in constant time and the loop never exits early.
func (e *Engine) Match(secret cryptox.Secret, code string, at time.Time) (uint64, bool) {
	if len(code) != DefaultDigits || len(secret) == 0 {
		return 0, false
	}

	var (
		matched uint64
		found   int
	)
	for offset := -int(e.skew); offset <= int(e.skew); offset++ {
		candidate := at.Add(time.Duration(offset) * e.period)
		if candidate.Unix() < 0 {
			continue
		}

		expected, err := e.CurrentCode(secret, candidate)
		if err != nil {
			return 0, false
		}

		hit := subtle.ConstantTimeCompare([]byte(expected), []byte(code))
		if hit == 1 && found == 0 {
			matched = e.Step(candidate)
		}
		found |= hit
	}

	return matched, found == 1
}

// IsValid reports whether code matches the step at at, or a neighbouring step
// within the skew window.
func (e *Engine) IsValid(secret cryptox.Secret, code string, at time.Time) bool {
	_, ok := e.Match(secret, code, at)
	return ok
}

// KeyURL renders the otpauth:// URL for a secret so it can be imported into
// an authenticator app or encoded into the pairing QR code.
func (e *Engine) KeyURL(secret cryptox.Secret, issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      uint(e.period / time.Second),
		SecretSize:  uint(len(secret)),
		Secret:      secret,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build otpauth url: %w", err)
	}
	return key.URL(), nil
}
