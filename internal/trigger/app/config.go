package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/bluezscript/pkg/httpx"
	"github.com/aussiebroadwan/bluezscript/pkg/otpx"
)

type Config struct {
	Env                  string        `env:"ENV" envDefault:"dev"`                   // dev, staging, prod
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`            // debug, info, warn, error
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`           // json, text
	Port                 int           `env:"PORT" envDefault:"8080"`                 // HTTP server port
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"` // Graceful shutdown timeout
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`  // Expired used-code sweep

	// DataDir holds the database and key files. It is created owner-only.
	DataDir              string `env:"TRIGGER_DATA_DIR" envDefault:"data"`
	DatabaseFile         string `env:"TRIGGER_DATABASE_FILE"`   // default: <DataDir>/trigger.db
	MasterKeyPath        string `env:"TRIGGER_MASTER_KEY_PATH"` // default: <DataDir>/master.key
	MasterKeyStrictPerms bool   `env:"TRIGGER_MASTER_KEY_STRICT_PERMS" envDefault:"true"`

	ReplayTolerance time.Duration `env:"TRIGGER_REPLAY_TOLERANCE" envDefault:"300s"`
	TOTPSkew        uint          `env:"TRIGGER_TOTP_SKEW" envDefault:"1"`

	ActionScript  string        `env:"TRIGGER_ACTION_SCRIPT"` // empty disables the hook
	ActionTimeout time.Duration `env:"TRIGGER_ACTION_TIMEOUT" envDefault:"30s"`

	// Stream transport for the wireless bridge. An empty address disables it.
	ListenNetwork string `env:"TRIGGER_LISTEN_NETWORK" envDefault:"tcp"`
	ListenAddr    string `env:"TRIGGER_LISTEN_ADDR"`

	ServerURL  string `env:"TRIGGER_SERVER_URL"`  // default: http://localhost:<Port>
	AdminToken string `env:"TRIGGER_ADMIN_TOKEN"` // generated into <DataDir>/admin.token when empty

	// Peers allowed to set X-Forwarded-For / X-Real-IP, as CIDRs or addresses.
	// Empty means rate limits key on the socket peer only.
	TrustedProxies []string `env:"TRIGGER_TRUSTED_PROXIES" envSeparator:","`

	AuditRetention time.Duration `env:"TRIGGER_AUDIT_RETENTION" envDefault:"0s"` // 0 keeps audit events forever
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (Config, error) {
	// The .env file is optional
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DatabaseFile == "" {
		c.DatabaseFile = filepath.Join(c.DataDir, "trigger.db")
	}
	if c.MasterKeyPath == "" {
		c.MasterKeyPath = filepath.Join(c.DataDir, "master.key")
	}
	if c.ServerURL == "" {
		c.ServerURL = fmt.Sprintf("http://localhost:%d", c.Port)
	}
}

// AdminTokenPath is where a generated admin token is kept.
func (c Config) AdminTokenPath() string {
	return filepath.Join(c.DataDir, "admin.token")
}

func (c Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("TRIGGER_DATA_DIR must not be empty"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.ReplayTolerance < time.Second {
		errs = append(errs, fmt.Errorf("TRIGGER_REPLAY_TOLERANCE %s must be at least 1s", c.ReplayTolerance))
	}
	if c.TOTPSkew > otpx.MaxSkew {
		errs = append(errs, fmt.Errorf("TRIGGER_TOTP_SKEW %d exceeds %d", c.TOTPSkew, otpx.MaxSkew))
	}
	if c.ActionTimeout <= 0 {
		errs = append(errs, errors.New("TRIGGER_ACTION_TIMEOUT must be positive"))
	}
	if c.AuditRetention < 0 {
		errs = append(errs, errors.New("TRIGGER_AUDIT_RETENTION must not be negative"))
	}
	if _, err := c.trustedProxies(); err != nil {
		errs = append(errs, fmt.Errorf("TRIGGER_TRUSTED_PROXIES: %w", err))
	}
	switch c.ListenNetwork {
	case "tcp", "tcp4", "tcp6", "unix":
	default:
		errs = append(errs, fmt.Errorf("TRIGGER_LISTEN_NETWORK %q not supported", c.ListenNetwork))
	}
	return errors.Join(errs...)
}

func (c Config) trustedProxies() (httpx.TrustedProxies, error) {
	return httpx.ParseTrustedProxies(c.TrustedProxies)
}
