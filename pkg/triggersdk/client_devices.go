package triggersdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// PairDevice registers a device and returns its one-time pairing payload.
func (c *SDKClient) PairDevice(ctx context.Context, req PairRequest) (*PairResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/devices", body, true)
	if err != nil {
		return nil, err
	}

	var out PairResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDevices returns all active devices.
func (c *SDKClient) ListDevices(ctx context.Context) ([]Device, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/devices", nil, true)
	if err != nil {
		return nil, err
	}

	var out ListDevicesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// GetDevice returns one active device.
func (c *SDKClient) GetDevice(ctx context.Context, deviceID string) (*Device, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/devices/"+url.PathEscape(deviceID), nil, true)
	if err != nil {
		return nil, err
	}

	var out Device
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameDevice changes a device's display name.
func (c *SDKClient) RenameDevice(ctx context.Context, deviceID, name string) (*Device, error) {
	body, err := jsonBody(RenameDeviceRequest{Name: name})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPatch, "/v1/devices/"+url.PathEscape(deviceID), body, true)
	if err != nil {
		return nil, err
	}

	var out Device
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeDevice deactivates a device. Revoking twice is not an error.
func (c *SDKClient) RevokeDevice(ctx context.Context, deviceID string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/devices/"+url.PathEscape(deviceID)+"/revoke", nil, true)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// GetStats returns authentication statistics.
func (c *SDKClient) GetStats(ctx context.Context) (*StatsResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/stats", nil, true)
	if err != nil {
		return nil, err
	}

	var out StatsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAuditEvents returns recent audit events, optionally filtered to one
// device. A limit of zero uses the server default.
func (c *SDKClient) ListAuditEvents(ctx context.Context, deviceID string, limit int) ([]AuditEvent, error) {
	q := url.Values{}
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/v1/audit-events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}

	var out ListAuditEventsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Events, nil
}
