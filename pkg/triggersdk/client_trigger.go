package triggersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/aussiebroadwan/bluezscript/pkg/otpx"
)

// NewTriggerRequest builds a TRIGGER message for the given device, deriving
// the code from the base32 secret handed out at pairing.
func NewTriggerRequest(deviceID, secret string, at time.Time) (TriggerRequest, error) {
	s, err := cryptox.DecodeSecret(secret)
	if err != nil {
		return TriggerRequest{}, err
	}
	defer s.Wipe()

	code, err := otpx.New().CurrentCode(s, at)
	if err != nil {
		return TriggerRequest{}, err
	}

	return TriggerRequest{
		DeviceID:  deviceID,
		TOTP:      code,
		Timestamp: at.Unix(),
		Action:    ActionTrigger,
	}, nil
}

// SendTrigger submits a trigger message. A rejected decision is returned as a
// TriggerResponse with its reason, not as an error; errors are reserved for
// transport failures, rate limiting and server faults.
func (c *SDKClient) SendTrigger(ctx context.Context, req TriggerRequest) (*TriggerResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/trigger", body, false)
	if err != nil {
		return nil, err
	}
	return decodeTrigger(resp)
}

// SendRawTrigger submits an arbitrary payload to the trigger endpoint.
func (c *SDKClient) SendRawTrigger(ctx context.Context, payload []byte) (*TriggerResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/trigger", bytes.NewReader(payload), false)
	if err != nil {
		return nil, err
	}
	return decodeTrigger(resp)
}

func decodeTrigger(resp *http.Response) (*TriggerResponse, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusBadRequest, http.StatusForbidden, http.StatusInternalServerError:
		var out TriggerResponse
		if err := json.Unmarshal(body, &out); err == nil && out.Outcome != "" {
			return &out, nil
		}
	}
	return nil, parseErrorResponse(resp, body)
}
