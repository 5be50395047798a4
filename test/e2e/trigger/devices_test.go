package trigger_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/bluezscript/pkg/triggersdk"
)

func TestPairingLifecycle(t *testing.T) {
	c := setupTriggerContainer(t, relaxedLimits)
	ctx := t.Context()

	p := pairDevice(t, c.Client, "pixel-7", "Pixel 7")
	require.Equal(t, "http://trigger.test:8080", p.ServerURL)
	require.True(t, strings.HasPrefix(p.QRCode, "data:image/png;base64,"))
	require.Contains(t, p.OTPAuthURL, "secret="+p.Secret)

	devices, err := c.Client.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.Equal(t, "Pixel 7", devices[0].Name)
	require.Nil(t, devices[0].LastAuthenticatedAt)

	_, err = c.Client.PairDevice(ctx, triggersdk.PairRequest{DeviceID: "pixel-7"})
	require.ErrorIs(t, err, triggersdk.ErrDuplicateDevice)

	renamed, err := c.Client.RenameDevice(ctx, "pixel-7", "Work phone")
	require.NoError(t, err)
	require.Equal(t, "Work phone", renamed.Name)

	require.NoError(t, c.Client.RevokeDevice(ctx, "pixel-7"))
	_, err = c.Client.GetDevice(ctx, "pixel-7")
	require.ErrorIs(t, err, triggersdk.ErrUnknownDevice)

	// Revoked ids stay reserved.
	_, err = c.Client.PairDevice(ctx, triggersdk.PairRequest{DeviceID: "pixel-7"})
	require.ErrorIs(t, err, triggersdk.ErrDuplicateDevice)
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	c := setupTriggerContainer(t, relaxedLimits)

	anon := triggersdk.NewSDKClient(c.BaseURL, "")
	_, err := anon.ListDevices(t.Context())
	require.ErrorIs(t, err, triggersdk.ErrInvalidToken)

	wrong := triggersdk.NewSDKClient(c.BaseURL, "not-the-token")
	_, err = wrong.PairDevice(t.Context(), triggersdk.PairRequest{DeviceID: "x"})
	require.ErrorIs(t, err, triggersdk.ErrInvalidToken)

	_, err = wrong.GetStats(t.Context())
	require.ErrorIs(t, err, triggersdk.ErrInvalidToken)
}

func TestPairingRateLimitDefaults(t *testing.T) {
	c := setupTriggerContainer(t, nil)

	pairDevice(t, c.Client, "first", "")
	_, err := c.Client.PairDevice(t.Context(), triggersdk.PairRequest{DeviceID: "second"})
	require.ErrorIs(t, err, triggersdk.ErrRateLimited)
}
