package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/bluezscript/pkg/slogx"
	"github.com/aussiebroadwan/bluezscript/pkg/triggersdk"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Env:                  "test",
		Port:                 0,
		ShutdownGracePeriod:  2 * time.Second,
		HousekeepingInterval: time.Hour,
		DataDir:              filepath.Join(t.TempDir(), "data"),
		MasterKeyStrictPerms: true,
		ReplayTolerance:      300 * time.Second,
		TOTPSkew:             1,
		ActionTimeout:        time.Second,
		ListenNetwork:        "tcp",
		ListenAddr:           "127.0.0.1:0",
	}
}

func TestNewCreatesKeyFilesOwnerOnly(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewWithLogger(cfg, slogx.Discard())
	require.NoError(t, err)
	require.NoError(t, app.Shutdown())

	for _, name := range []string{"master.key", "admin.token"} {
		info, err := os.Stat(filepath.Join(cfg.DataDir, name))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm(), name)
	}

	// A restart reuses the generated token and key.
	again, err := NewWithLogger(cfg, slogx.Discard())
	require.NoError(t, err)
	defer func() { _ = again.Shutdown() }()
	require.Equal(t, app.AdminToken(), again.AdminToken())
	require.Len(t, app.AdminToken(), 43)
}

func TestConfiguredAdminTokenWins(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminToken = "from-env"

	app, err := NewWithLogger(cfg, slogx.Discard())
	require.NoError(t, err)
	defer func() { _ = app.Shutdown() }()

	require.Equal(t, "from-env", app.AdminToken())
	_, err = os.Stat(cfg.AdminTokenPath())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLooseMasterKeyRejectedWhenStrict(t *testing.T) {
	cfg := testConfig(t)
	cfg.applyDefaults()
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o700))
	require.NoError(t, os.WriteFile(cfg.MasterKeyPath, []byte("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=\n"), 0o644))
	require.NoError(t, os.Chmod(cfg.MasterKeyPath, 0o644))

	_, err := NewWithLogger(cfg, slogx.Discard())
	require.Error(t, err)
}

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewWithLogger(cfg, slogx.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool { return app.HTTPAddr() != nil }, 5*time.Second, 10*time.Millisecond)

	client := triggersdk.NewSDKClient("http://"+app.HTTPAddr().String(), app.AdminToken())
	require.Eventually(t, func() bool {
		h, err := client.GetReadiness(context.Background())
		return err == nil && h.Status == "ok"
	}, 5*time.Second, 20*time.Millisecond)

	p, err := client.PairDevice(context.Background(), triggersdk.PairRequest{DeviceID: "phone", Name: "Phone"})
	require.NoError(t, err)

	msg, err := triggersdk.NewTriggerRequest(p.DeviceID, p.Secret, time.Now())
	require.NoError(t, err)
	res, err := client.SendTrigger(context.Background(), msg)
	require.NoError(t, err)
	require.Equal(t, triggersdk.OutcomeAccepted, res.Outcome)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
