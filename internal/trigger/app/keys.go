package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
)

// prepareDataDir creates the data directory owner-only and warns when an
// existing one is readable by others.
func prepareDataDir(dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat data directory: %w", err)
	}
	if err := cryptox.CheckOwnerOnly(info); err != nil {
		logger.Warn("data directory is accessible by other users", "path", dir, "mode", info.Mode().Perm().String())
	}
	return nil
}

// InitSecretCipher loads (or creates) the master key and derives the cipher
// used for device secrets at rest.
func InitSecretCipher(cfg Config, logger *slog.Logger) (*cryptox.SecretCipher, error) {
	mk, err := cryptox.LoadOrCreateMasterKey(cfg.MasterKeyPath, cryptox.KeyFileOptions{
		AllowLoosePermissions: !cfg.MasterKeyStrictPerms,
		Logger:                logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}

	cipher, err := cryptox.NewSecretCipher(mk)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise secret cipher: %w", err)
	}

	logger.Info("master key loaded", "path", cfg.MasterKeyPath)
	return cipher, nil
}

// InitAdminToken returns the configured admin token, or loads one generated on
// a previous start, or generates and stores a new one.
func InitAdminToken(cfg Config, logger *slog.Logger) (string, error) {
	if token := strings.TrimSpace(cfg.AdminToken); token != "" {
		return token, nil
	}

	path := cfg.AdminTokenPath()
	raw, err := cryptox.LoadOrCreateKeyFile(path, func() ([]byte, error) {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, err
		}
		return []byte(token), nil
	}, cryptox.KeyFileOptions{
		AllowLoosePermissions: !cfg.MasterKeyStrictPerms,
		Logger:                logger,
	})
	if err != nil {
		return "", fmt.Errorf("failed to load admin token: %w", err)
	}

	logger.Info("admin token loaded from file", "path", path)
	return string(raw), nil
}
