package triggersdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the BluezScript trigger service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// AdminToken is sent as a bearer token on operator endpoints. Leave it
	// empty when only the trigger and health endpoints are used.
	AdminToken string
}

// NewSDKClient creates a new trigger service client.
func NewSDKClient(baseURL, adminToken string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		AdminToken: adminToken,
	}
}
