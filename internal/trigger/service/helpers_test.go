package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/store/drivers/sqlite"
	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/aussiebroadwan/bluezscript/pkg/otpx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store     *sqlite.Store
	engine    *otpx.Engine
	registry  *Registry
	validator *Validator
	stats     *Stats
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mk, err := cryptox.GenerateMasterKey()
	require.NoError(t, err)
	cipher, err := cryptox.NewSecretCipher(mk)
	require.NoError(t, err)

	env := &testEnv{
		store:  st,
		engine: otpx.New(),
		stats:  NewStats(),
		now:    time.Unix(1_760_000_000, 0).UTC(),
	}
	clock := func() time.Time { return env.now }

	env.registry = NewRegistry(st, cipher, env.engine, nil, "http://trigger.local:8080")
	env.registry.Now = clock

	env.validator = NewValidator(env.registry, env.engine, st, env.stats, nil, DefaultReplayTolerance)
	env.validator.Now = clock

	return env
}

// pair registers a device and returns its decoded secret.
func (e *testEnv) pair(t *testing.T, id string) cryptox.Secret {
	t.Helper()

	p, err := e.registry.Register(t.Context(), id, "")
	require.NoError(t, err)

	secret, err := cryptox.DecodeSecret(p.Secret)
	require.NoError(t, err)
	return secret
}

func (e *testEnv) code(t *testing.T, secret cryptox.Secret, at time.Time) string {
	t.Helper()

	code, err := e.engine.CurrentCode(secret, at)
	require.NoError(t, err)
	return code
}
