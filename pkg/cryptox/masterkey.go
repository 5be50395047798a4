package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// MasterKeySize is the number of random bytes in a generated master key.
const MasterKeySize = 32

var (
	// ErrKeyFilePermission is returned when a key file is readable or
	// writable by anyone other than its owner.
	ErrKeyFilePermission = errors.New("cryptox: key file permissions are more permissive than owner-only")

	// ErrMasterKeyInvalid is returned for key files that do not decode to a
	// full-length key.
	ErrMasterKeyInvalid = errors.New("cryptox: master key is invalid")
)

// MasterKey is the process-wide key every device secret is encrypted under.
// Load it once at startup and hand it to NewSecretCipher.
type MasterKey struct {
	material []byte
}

// NewMasterKey wraps existing key material. Mostly useful in tests.
func NewMasterKey(material []byte) (MasterKey, error) {
	if len(material) < MasterKeySize {
		return MasterKey{}, ErrMasterKeyInvalid
	}
	buf := make([]byte, len(material))
	copy(buf, material)
	return MasterKey{material: buf}, nil
}

// GenerateMasterKey returns a fresh random master key.
func GenerateMasterKey() (MasterKey, error) {
	buf := make([]byte, MasterKeySize)
	if _, err := rand.Read(buf); err != nil {
		return MasterKey{}, fmt.Errorf("failed to generate master key: %w", err)
	}
	return MasterKey{material: buf}, nil
}

func (k MasterKey) String() string { return "[REDACTED]" }

func (k MasterKey) LogValue() slog.Value { return slog.StringValue("[REDACTED]") }

// KeyFileOptions controls how key files are created and checked.
type KeyFileOptions struct {
	// AllowLoosePermissions downgrades ErrKeyFilePermission to a warning.
	AllowLoosePermissions bool
	Logger                *slog.Logger
}

func (o KeyFileOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// LoadOrCreateMasterKey loads the master key from path, creating it with
// owner-only permissions on first use. Losing this file makes every stored
// device secret unrecoverable.
func LoadOrCreateMasterKey(path string, opts KeyFileOptions) (MasterKey, error) {
	raw, err := LoadOrCreateKeyFile(path, func() ([]byte, error) {
		mk, err := GenerateMasterKey()
		if err != nil {
			return nil, err
		}
		return mk.material, nil
	}, opts)
	if err != nil {
		return MasterKey{}, err
	}
	if len(raw) < MasterKeySize {
		return MasterKey{}, fmt.Errorf("%w: %s holds %d bytes", ErrMasterKeyInvalid, path, len(raw))
	}
	return MasterKey{material: raw}, nil
}

// LoadOrCreateKeyFile returns the decoded contents of a base64 key file,
// calling generate and persisting the result (mode 0600, parent 0700) if the
// file does not exist yet.
func LoadOrCreateKeyFile(path string, generate func() ([]byte, error), opts KeyFileOptions) ([]byte, error) {
	path = filepath.Clean(path)
	log := opts.logger()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		material, err := generate()
		if err != nil {
			return nil, err
		}

		encoded := base64.StdEncoding.EncodeToString(material) + "\n"
		// O_EXCL so two processes racing on first start cannot both write.
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to create key file: %w", err)
		}
		if _, err := f.WriteString(encoded); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write key file: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("failed to write key file: %w", err)
		}

		log.Info("generated new key file", "path", path)
		return material, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat key file: %w", err)
	}

	if err := CheckOwnerOnly(info); err != nil {
		if !opts.AllowLoosePermissions {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Warn("KEY FILE PERMISSIONS ARE TOO PERMISSIVE, device secrets may be exposed",
			"path", path,
			"mode", info.Mode().Perm().String(),
		)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	material, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not base64", ErrMasterKeyInvalid, path)
	}
	return material, nil
}

// CheckOwnerOnly returns ErrKeyFilePermission when group or other bits are set.
// Windows has no POSIX mode bits so the check is skipped there.
func CheckOwnerOnly(info fs.FileInfo) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	if info.Mode().Perm()&0o077 != 0 {
		return ErrKeyFilePermission
	}
	return nil
}
