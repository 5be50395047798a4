package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, deviceID, code string, ts int64) []byte {
	t.Helper()

	payload, err := json.Marshal(domain.AuthMessage{
		DeviceID:  deviceID,
		TOTP:      code,
		Timestamp: ts,
		Action:    domain.ActionTrigger,
	})
	require.NoError(t, err)
	return payload
}

func (e *testEnv) auditEvents(t *testing.T) []domain.AuditEvent {
	t.Helper()

	events, err := e.store.AuditEvents().ListRecentAuditEvents(context.Background(), "", 100)
	require.NoError(t, err)
	return events
}

func TestEvaluateAcceptsValidTrigger(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	secret := env.pair(t, "abc123")

	d := env.validator.Evaluate(ctx, message(t, "abc123", env.code(t, secret, env.now), env.now.Unix()))
	require.True(t, d.Accepted(), "reason: %s", d.Reason)
	require.Equal(t, "abc123", d.DeviceID)
	require.Equal(t, "abc123", d.DeviceName)
	require.Equal(t, domain.ActionTrigger, d.Action)

	dev, err := env.registry.Get(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, dev.LastAuthenticatedAt)
	require.WithinDuration(t, env.now, *dev.LastAuthenticatedAt, time.Second)

	events := env.auditEvents(t)
	require.Len(t, events, 1)
	require.Equal(t, domain.OutcomeAccepted, events[0].Outcome)
	require.Equal(t, "abc123", events[0].DeviceID)

	snap := env.stats.Snapshot()
	require.Equal(t, uint64(1), snap.TotalAttempts)
	require.Equal(t, uint64(1), snap.Accepted)
}

func TestEvaluateAcceptsDriftWithinOneStep(t *testing.T) {
	env := newTestEnv(t)
	secret := env.pair(t, "abc123")

	code := env.code(t, secret, env.now.Add(-30*time.Second))
	d := env.validator.Evaluate(t.Context(), message(t, "abc123", code, env.now.Unix()))
	require.True(t, d.Accepted(), "reason: %s", d.Reason)
}

func TestEvaluateRejections(t *testing.T) {
	env := newTestEnv(t)
	secret := env.pair(t, "abc123")
	valid := env.code(t, secret, env.now)
	wrong := fmt.Sprintf("%06d", (mustAtoi(t, valid)+1)%1_000_000)

	cases := []struct {
		name    string
		payload []byte
		reason  domain.Reason
	}{
		{"stale timestamp", message(t, "abc123", valid, env.now.Unix()-400), domain.ReasonStaleOrFutureTimestamp},
		{"future timestamp", message(t, "abc123", valid, env.now.Unix()+400), domain.ReasonStaleOrFutureTimestamp},
		{"wrong code", message(t, "abc123", wrong, env.now.Unix()), domain.ReasonInvalidCode},
		{"code two steps old", message(t, "abc123", env.code(t, secret, env.now.Add(-61*time.Second)), env.now.Unix()), domain.ReasonInvalidCode},
		{"unknown device", message(t, "nobody", valid, env.now.Unix()), domain.ReasonUnknownDevice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := env.validator.Evaluate(t.Context(), tc.payload)
			require.False(t, d.Accepted())
			require.Equal(t, tc.reason, d.Reason)
		})
	}

	events := env.auditEvents(t)
	require.Len(t, events, len(cases), "one audit event per evaluation")

	dev, err := env.registry.Get(t.Context(), "abc123")
	require.NoError(t, err)
	require.Nil(t, dev.LastAuthenticatedAt, "rejections never touch the device")
}

func TestEvaluateTimestampBoundary(t *testing.T) {
	env := newTestEnv(t)
	secret := env.pair(t, "abc123")

	d := env.validator.Evaluate(t.Context(), message(t, "abc123", env.code(t, secret, env.now), env.now.Unix()-300))
	require.True(t, d.Accepted(), "exactly at the tolerance is fresh, reason: %s", d.Reason)

	env.now = env.now.Add(30 * time.Second)
	d = env.validator.Evaluate(t.Context(), message(t, "abc123", env.code(t, secret, env.now), env.now.Unix()-301))
	require.Equal(t, domain.ReasonStaleOrFutureTimestamp, d.Reason)
}

func TestEvaluateUnknownDeviceAuditHasNoCode(t *testing.T) {
	env := newTestEnv(t)

	d := env.validator.Evaluate(t.Context(), message(t, "ghost", "123456", env.now.Unix()))
	require.Equal(t, domain.ReasonUnknownDevice, d.Reason)

	events := env.auditEvents(t)
	require.Len(t, events, 1)
	require.Equal(t, "ghost", events[0].DeviceID)
	require.Equal(t, domain.ReasonUnknownDevice, events[0].Reason)

	raw := fmt.Sprintf("%+v", events[0])
	require.NotContains(t, raw, "123456")
}

func TestEvaluateRevokedDeviceIsUnknown(t *testing.T) {
	env := newTestEnv(t)
	secret := env.pair(t, "abc123")
	require.NoError(t, env.registry.Revoke(t.Context(), "abc123"))

	d := env.validator.Evaluate(t.Context(), message(t, "abc123", env.code(t, secret, env.now), env.now.Unix()))
	require.Equal(t, domain.ReasonUnknownDevice, d.Reason)
}

func TestEvaluateMalformed(t *testing.T) {
	env := newTestEnv(t)
	now := env.now.Unix()

	payloads := map[string]string{
		"empty":            ``,
		"not json":         `TRIGGER`,
		"array":            `[]`,
		"missing totp":     fmt.Sprintf(`{"device_id":"abc123","timestamp":%d,"action":"TRIGGER"}`, now),
		"missing action":   fmt.Sprintf(`{"device_id":"abc123","totp":"123456","timestamp":%d}`, now),
		"numeric totp":     fmt.Sprintf(`{"device_id":"abc123","totp":123456,"timestamp":%d,"action":"TRIGGER"}`, now),
		"short totp":       fmt.Sprintf(`{"device_id":"abc123","totp":"12345","timestamp":%d,"action":"TRIGGER"}`, now),
		"alpha totp":       fmt.Sprintf(`{"device_id":"abc123","totp":"12345a","timestamp":%d,"action":"TRIGGER"}`, now),
		"signed totp":      fmt.Sprintf(`{"device_id":"abc123","totp":"+12345","timestamp":%d,"action":"TRIGGER"}`, now),
		"string timestamp": `{"device_id":"abc123","totp":"123456","timestamp":"now","action":"TRIGGER"}`,
		"float timestamp":  `{"device_id":"abc123","totp":"123456","timestamp":1.5,"action":"TRIGGER"}`,
		"zero timestamp":   `{"device_id":"abc123","totp":"123456","timestamp":0,"action":"TRIGGER"}`,
		"unknown field":    fmt.Sprintf(`{"device_id":"abc123","totp":"123456","timestamp":%d,"action":"TRIGGER","x":1}`, now),
		"trailing data":    fmt.Sprintf(`{"device_id":"abc123","totp":"123456","timestamp":%d,"action":"TRIGGER"} {}`, now),
		"oversized":        `{"device_id":"` + strings.Repeat("a", domain.MaxMessageSize) + `"}`,
		"uppercase keys":   fmt.Sprintf(`{"DEVICE_ID":"abc123","TOTP":"123456","Timestamp":%d,"ACTION":"TRIGGER"}`, now),
		"duplicate device": fmt.Sprintf(`{"device_id":"other","device_id":"abc123","totp":"123456","timestamp":%d,"action":"TRIGGER"}`, now),
		"duplicate action": fmt.Sprintf(`{"device_id":"abc123","totp":"123456","timestamp":%d,"action":"NOOP","action":"TRIGGER"}`, now),
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			d := env.validator.Evaluate(t.Context(), []byte(payload))
			require.Equal(t, domain.ReasonMalformedMessage, d.Reason)
		})
	}

	events := env.auditEvents(t)
	require.Len(t, events, len(payloads))
	for _, e := range events {
		require.Equal(t, domain.UnknownDeviceID, e.DeviceID)
	}
}

func TestEvaluateRequiresExactKeys(t *testing.T) {
	env := newTestEnv(t)
	secret := env.pair(t, "abc123")
	code := env.code(t, secret, env.now)
	now := env.now.Unix()

	loose := []string{
		fmt.Sprintf(`{"DEVICE_ID":"abc123","TOTP":"%s","Timestamp":%d,"ACTION":"TRIGGER"}`, code, now),
		fmt.Sprintf(`{"device_id":"abc123","totp":"%s","timestamp":%d,"action":"NOOP","action":"TRIGGER"}`, code, now),
	}
	for _, payload := range loose {
		d := env.validator.Evaluate(t.Context(), []byte(payload))
		require.Equal(t, domain.ReasonMalformedMessage, d.Reason, payload)
	}

	// The code was never consumed by the rejected payloads.
	d := env.validator.Evaluate(t.Context(), message(t, "abc123", code, now))
	require.True(t, d.Accepted(), "reason: %s", d.Reason)
}

func TestEvaluateRejectsReplay(t *testing.T) {
	env := newTestEnv(t)
	secret := env.pair(t, "abc123")
	payload := message(t, "abc123", env.code(t, secret, env.now), env.now.Unix())

	require.True(t, env.validator.Evaluate(t.Context(), payload).Accepted())

	d := env.validator.Evaluate(t.Context(), payload)
	require.Equal(t, domain.ReasonReplayedCode, d.Reason)

	// Still replayed a step later, while the code remains inside the skew window.
	env.now = env.now.Add(30 * time.Second)
	d = env.validator.Evaluate(t.Context(), payload)
	require.Equal(t, domain.ReasonReplayedCode, d.Reason)

	// Once the message is stale the freshness check fires first.
	env.now = env.now.Add(10 * time.Minute)
	d = env.validator.Evaluate(t.Context(), payload)
	require.Equal(t, domain.ReasonStaleOrFutureTimestamp, d.Reason)

	require.Len(t, env.auditEvents(t), 4)
}

func TestEvaluateConcurrentReplayAcceptsOnce(t *testing.T) {
	env := newTestEnv(t)
	secret := env.pair(t, "abc123")
	payload := message(t, "abc123", env.code(t, secret, env.now), env.now.Unix())

	var (
		accepted atomic.Int32
		replayed atomic.Int32
		wg       sync.WaitGroup
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := env.validator.Evaluate(context.Background(), payload)
			switch {
			case d.Accepted():
				accepted.Add(1)
			case d.Reason == domain.ReasonReplayedCode:
				replayed.Add(1)
			default:
				assert.Failf(t, "unexpected reason", "%s", d.Reason)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), accepted.Load())
	require.Equal(t, int32(15), replayed.Load())
	require.Len(t, env.auditEvents(t), 16)
}

func TestEvaluateIndependentDevicesInParallel(t *testing.T) {
	env := newTestEnv(t)

	var wg sync.WaitGroup
	for i := range 6 {
		id := fmt.Sprintf("device-%d", i)
		secret := env.pair(t, id)
		payload := message(t, id, env.code(t, secret, env.now), env.now.Unix())

		wg.Add(1)
		go func() {
			defer wg.Done()
			d := env.validator.Evaluate(context.Background(), payload)
			assert.True(t, d.Accepted(), "%s: %s", id, d.Reason)
		}()
	}
	wg.Wait()

	snap := env.stats.Snapshot()
	require.Equal(t, uint64(6), snap.Accepted)
}

func TestEvaluateStoreFailureIsInternalError(t *testing.T) {
	env := newTestEnv(t)
	secret := env.pair(t, "abc123")
	payload := message(t, "abc123", env.code(t, secret, env.now), env.now.Unix())

	require.NoError(t, env.store.Close())

	d := env.validator.Evaluate(t.Context(), payload)
	require.False(t, d.Accepted())
	require.Equal(t, domain.ReasonInternalError, d.Reason)
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()

	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
