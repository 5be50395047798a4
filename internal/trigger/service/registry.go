package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/store"
	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/aussiebroadwan/bluezscript/pkg/otpx"
	"github.com/aussiebroadwan/bluezscript/pkg/slogx"
)

// DefaultIssuer labels the enrolment entry in authenticator apps.
const DefaultIssuer = "BluezScript"

var (
	ErrDuplicateDevice   = errors.New("device already registered")
	ErrUnknownDevice     = errors.New("unknown device")
	ErrInvalidDeviceID   = errors.New("invalid device id")
	ErrInvalidDeviceName = errors.New("invalid device name")
)

// Registry owns paired devices and their encrypted secrets. Every operation on
// a single device runs under that device's lock.
type Registry struct {
	Store     store.Store
	Cipher    *cryptox.SecretCipher
	Engine    *otpx.Engine
	Logger    *slog.Logger
	ServerURL string // Handed to the companion app in the pairing payload
	Issuer    string
	Now       func() time.Time

	locks keyedMutex
}

func NewRegistry(st store.Store, cipher *cryptox.SecretCipher, engine *otpx.Engine, logger *slog.Logger, serverURL string) *Registry {
	if logger == nil {
		logger = slogx.Discard()
	}
	return &Registry{
		Store:     st,
		Cipher:    cipher,
		Engine:    engine,
		Logger:    logger,
		ServerURL: serverURL,
		Issuer:    DefaultIssuer,
		Now:       time.Now,
	}
}

// Register pairs a new device. An empty deviceID gets a generated one and an
// empty name defaults to the id, cut to the name limit. The returned Pairing is the only time the
// plaintext secret is ever exposed.
func (r *Registry) Register(ctx context.Context, deviceID, name string) (domain.Pairing, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		generated, err := cryptox.GenerateDeviceID()
		if err != nil {
			return domain.Pairing{}, err
		}
		deviceID = generated
	}
	if err := validate.Var(deviceID, deviceIDRules); err != nil {
		return domain.Pairing{}, fmt.Errorf("%w: %v", ErrInvalidDeviceID, err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		// Device ids are ASCII, so a byte cut is safe.
		name = deviceID[:min(len(deviceID), maxDeviceName)]
	}
	if err := validate.Var(name, deviceNameRules); err != nil {
		return domain.Pairing{}, fmt.Errorf("%w: %v", ErrInvalidDeviceName, err)
	}

	unlock, err := r.locks.Lock(ctx, deviceID)
	if err != nil {
		return domain.Pairing{}, err
	}
	defer unlock()

	secret, err := cryptox.GenerateSecret()
	if err != nil {
		return domain.Pairing{}, err
	}
	defer secret.Wipe()

	sealed, err := r.Cipher.Encrypt(secret, []byte(deviceID))
	if err != nil {
		return domain.Pairing{}, fmt.Errorf("failed to encrypt device secret: %w", err)
	}

	err = r.Store.Devices().CreateDevice(ctx, domain.Device{
		ID:              deviceID,
		Name:            name,
		SecretEncrypted: sealed,
		RegisteredAt:    r.Now(),
		Active:          true,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Pairing{}, ErrDuplicateDevice
	}
	if err != nil {
		return domain.Pairing{}, fmt.Errorf("failed to create device: %w", err)
	}

	otpauth, err := r.Engine.KeyURL(secret, r.Issuer, name)
	if err != nil {
		return domain.Pairing{}, err
	}

	r.Logger.Info("device registered", "device_id", deviceID, "name", name)

	return domain.Pairing{
		DeviceID:   deviceID,
		Name:       name,
		Secret:     secret.Base32(),
		ServerURL:  r.ServerURL,
		OTPAuthURL: otpauth,
	}, nil
}

// Lookup returns an active device with its decrypted secret. Missing, revoked
// and undecryptable records all yield ErrUnknownDevice. The caller owns the
// secret and should Wipe it when done.
func (r *Registry) Lookup(ctx context.Context, deviceID string) (domain.Device, error) {
	unlock, err := r.locks.Lock(ctx, deviceID)
	if err != nil {
		return domain.Device{}, err
	}
	defer unlock()

	return r.lookup(ctx, r.Store, deviceID)
}

func (r *Registry) lookup(ctx context.Context, st store.Store, deviceID string) (domain.Device, error) {
	dev, err := st.Devices().GetDeviceByID(ctx, deviceID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Device{}, ErrUnknownDevice
	}
	if err != nil {
		return domain.Device{}, fmt.Errorf("failed to load device: %w", err)
	}
	if !dev.Active {
		return domain.Device{}, ErrUnknownDevice
	}

	plain, err := r.Cipher.Decrypt(dev.SecretEncrypted, []byte(dev.ID))
	if err != nil {
		r.Logger.Error("device secret failed integrity check", "device_id", dev.ID, "error", err)
		return domain.Device{}, fmt.Errorf("%w: %w", ErrUnknownDevice, err)
	}

	dev.Secret = cryptox.Secret(plain)
	dev.SecretEncrypted = nil
	return dev, nil
}

// Get returns an active device without secret material.
func (r *Registry) Get(ctx context.Context, deviceID string) (domain.Device, error) {
	dev, err := r.Store.Devices().GetDeviceByID(ctx, deviceID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Device{}, ErrUnknownDevice
	}
	if err != nil {
		return domain.Device{}, fmt.Errorf("failed to load device: %w", err)
	}
	if !dev.Active {
		return domain.Device{}, ErrUnknownDevice
	}

	dev.SecretEncrypted = nil
	return dev, nil
}

// Revoke deactivates a device. Revoking an already revoked device is a no-op.
func (r *Registry) Revoke(ctx context.Context, deviceID string) error {
	unlock, err := r.locks.Lock(ctx, deviceID)
	if err != nil {
		return err
	}
	defer unlock()

	err = r.Store.Devices().RevokeDevice(ctx, deviceID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownDevice
	}
	if err != nil {
		return fmt.Errorf("failed to revoke device: %w", err)
	}

	r.Logger.Info("device revoked", "device_id", deviceID)
	return nil
}

// Rename changes the display name of an active device.
func (r *Registry) Rename(ctx context.Context, deviceID, name string) error {
	name = strings.TrimSpace(name)
	if err := validate.Var(name, "required,"+deviceNameRules); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDeviceName, err)
	}

	unlock, err := r.locks.Lock(ctx, deviceID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := r.Get(ctx, deviceID); err != nil {
		return err
	}
	if err := r.Store.Devices().UpdateDeviceName(ctx, deviceID, name); err != nil {
		return fmt.Errorf("failed to rename device: %w", err)
	}
	return nil
}

// TouchLastAuthenticated records a successful authentication time.
func (r *Registry) TouchLastAuthenticated(ctx context.Context, deviceID string, at time.Time) error {
	unlock, err := r.locks.Lock(ctx, deviceID)
	if err != nil {
		return err
	}
	defer unlock()

	err = r.Store.Devices().TouchDeviceLastAuthenticated(ctx, deviceID, at)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownDevice
	}
	return err
}

// ListActive returns active devices, newest first, without secret material.
func (r *Registry) ListActive(ctx context.Context) ([]domain.Device, error) {
	devices, err := r.Store.Devices().ListActiveDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	for i := range devices {
		devices[i].SecretEncrypted = nil
	}
	return devices, nil
}

func (r *Registry) CountActive(ctx context.Context) (int64, error) {
	return r.Store.Devices().CountActiveDevices(ctx)
}

// CountAuthenticatedSince counts active devices seen at or after since.
func (r *Registry) CountAuthenticatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.Store.Devices().CountDevicesAuthenticatedSince(ctx, since)
}

// DeviceSession gives exclusive access to one device for the duration of
// Registry.Exclusive.
type DeviceSession struct {
	ctx      context.Context
	registry *Registry
	deviceID string
	name     string // display name once authenticated
}

// Lookup behaves like Registry.Lookup without re-acquiring the lock.
func (s *DeviceSession) Lookup() (domain.Device, error) {
	return s.registry.lookup(s.ctx, s.registry.Store, s.deviceID)
}

// MarkAuthenticated consumes the time step of an accepted code and records the
// authentication time in one transaction. It returns false, and changes
// nothing, when the step was already consumed.
func (s *DeviceSession) MarkAuthenticated(step uint64, expiresAt, at time.Time) (bool, error) {
	fresh := false
	err := s.registry.Store.WithTx(s.ctx, func(tx store.Tx) error {
		ok, err := tx.UsedCodes().RecordUsedCode(s.ctx, s.deviceID, step, expiresAt)
		if err != nil {
			return fmt.Errorf("failed to record used code: %w", err)
		}
		if !ok {
			return nil
		}
		if err := tx.Devices().TouchDeviceLastAuthenticated(s.ctx, s.deviceID, at); err != nil {
			return fmt.Errorf("failed to touch device: %w", err)
		}
		fresh = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return fresh, nil
}

// Exclusive runs fn while holding the lock for deviceID, so a lookup and the
// writes that follow it cannot interleave with another evaluation, a revoke or
// a rename of the same device.
func (r *Registry) Exclusive(ctx context.Context, deviceID string, fn func(s *DeviceSession) error) error {
	unlock, err := r.locks.Lock(ctx, deviceID)
	if err != nil {
		return err
	}
	defer unlock()

	return fn(&DeviceSession{ctx: ctx, registry: r, deviceID: deviceID})
}
