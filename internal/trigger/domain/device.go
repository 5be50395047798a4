package domain

import (
	"time"

	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
)

// Device is a paired companion app. Records are revoked, never deleted, so the
// audit trail always has something to point at.
type Device struct {
	ID                  string         // 16 hex chars unless supplied by the operator
	Name                string         // Display name, mutable
	SecretEncrypted     []byte         // AES-256-GCM blob bound to ID, the only persisted form of the secret
	Secret              cryptox.Secret // Plaintext, populated by Registry.Lookup for one evaluation only
	RegisteredAt        time.Time
	LastAuthenticatedAt *time.Time // nil until the first accepted trigger
	Active              bool
}

// ActiveSince reports whether the device authenticated at or after t.
func (d *Device) ActiveSince(t time.Time) bool {
	return d.LastAuthenticatedAt != nil && !d.LastAuthenticatedAt.Before(t)
}
