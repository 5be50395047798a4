package trigger_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	c := setupTriggerContainer(t, relaxedLimits)

	health, err := c.Client.GetLiveness(t.Context())
	assertHealthy(t, health, err)

	health, err = c.Client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Cipher)
}
