package triggersdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/aussiebroadwan/bluezscript/pkg/otpx"
	"github.com/aussiebroadwan/bluezscript/pkg/triggersdk"
)

func TestPairDeviceSendsAdminToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/devices", r.URL.Path)
		assert.Equal(t, "Bearer op-token", r.Header.Get("Authorization"))

		var req triggersdk.PairRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pixel", req.DeviceID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(triggersdk.PairResponse{DeviceID: req.DeviceID, Name: req.Name, Secret: "ABC"})
	}))
	defer srv.Close()

	c := triggersdk.NewSDKClient(srv.URL+"/", "op-token")
	out, err := c.PairDevice(context.Background(), triggersdk.PairRequest{DeviceID: "pixel", Name: "Pixel"})
	require.NoError(t, err)
	require.Equal(t, "pixel", out.DeviceID)
	require.Equal(t, "ABC", out.Secret)
}

func TestErrorResponsesBecomeAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"duplicate_device","error_description":"device already registered"}`))
	}))
	defer srv.Close()

	c := triggersdk.NewSDKClient(srv.URL, "t")
	_, err := c.PairDevice(context.Background(), triggersdk.PairRequest{DeviceID: "x", Name: "x"})
	require.Error(t, err)
	require.ErrorIs(t, err, triggersdk.ErrDuplicateDevice)

	var apiErr *triggersdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, "device already registered", apiErr.Description)
}

func TestNonJSONErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := triggersdk.NewSDKClient(srv.URL, "").GetLiveness(context.Background())
	var apiErr *triggersdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "bad_gateway", apiErr.Code)
	require.Equal(t, "boom", apiErr.Description)
}

func TestRevokeDeviceExpectsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/devices/a%20b/revoke", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, triggersdk.NewSDKClient(srv.URL, "t").RevokeDevice(context.Background(), "a b"))
}

func TestListAuditEventsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pixel", r.URL.Query().Get("device_id"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(triggersdk.ListAuditEventsResponse{
			Events: []triggersdk.AuditEvent{{ID: "01", DeviceID: "pixel", Outcome: triggersdk.OutcomeAccepted}},
		})
	}))
	defer srv.Close()

	events, err := triggersdk.NewSDKClient(srv.URL, "t").ListAuditEvents(context.Background(), "pixel", 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, triggersdk.OutcomeAccepted, events[0].Outcome)
}

func TestSendTriggerReturnsRejectedDecision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"outcome":"rejected","reason":"invalid_code"}`))
	}))
	defer srv.Close()

	res, err := triggersdk.NewSDKClient(srv.URL, "t").SendTrigger(context.Background(), triggersdk.TriggerRequest{DeviceID: "d"})
	require.NoError(t, err)
	require.Equal(t, triggersdk.OutcomeRejected, res.Outcome)
	require.Equal(t, "invalid_code", res.Reason)
}

func TestSendTriggerRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded"}`))
	}))
	defer srv.Close()

	_, err := triggersdk.NewSDKClient(srv.URL, "").SendRawTrigger(context.Background(), []byte("{"))
	require.ErrorIs(t, err, triggersdk.ErrRateLimited)
}

func TestNewTriggerRequestDerivesCurrentCode(t *testing.T) {
	secret, err := cryptox.GenerateSecret()
	require.NoError(t, err)
	at := time.Unix(1_760_000_000, 0)

	req, err := triggersdk.NewTriggerRequest("pixel", secret.Base32(), at)
	require.NoError(t, err)
	require.Equal(t, "pixel", req.DeviceID)
	require.Equal(t, int64(1_760_000_000), req.Timestamp)
	require.Equal(t, triggersdk.ActionTrigger, req.Action)

	want, err := otpx.New().CurrentCode(secret, at)
	require.NoError(t, err)
	require.Equal(t, want, req.TOTP)

	_, err = triggersdk.NewTriggerRequest("pixel", "not base32!", at)
	require.ErrorIs(t, err, cryptox.ErrMalformedSecret)
}
