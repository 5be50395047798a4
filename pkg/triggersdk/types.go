package triggersdk

import "time"

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the body of every error reply from the service.
// Client code should use the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the machine readable error code (e.g., "unknown_device")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description,omitempty"`
}

// ============================================================================
// Device Types
// ============================================================================

// PairRequest registers a new companion device.
type PairRequest struct {
	// DeviceID is the identifier the companion will present. Generated by the
	// server when empty.
	DeviceID string `json:"device_id,omitempty"`

	// Name is the operator facing display name
	Name string `json:"name"`
}

// PairResponse is the one-time pairing handoff. The secret is never returned again.
type PairResponse struct {
	DeviceID  string `json:"device_id"`
	Name      string `json:"name"`
	Secret    string `json:"secret"`
	ServerURL string `json:"server_url"`

	// OTPAuthURL is the otpauth://totp/ key URI for standard authenticator apps
	OTPAuthURL string `json:"otpauth_url"`

	// QRCode is a data:image/png;base64 URL encoding the pairing payload
	QRCode string `json:"qr_code"`
}

// Device is the operator view of a registered device. It never carries the secret.
type Device struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	RegisteredAt        time.Time  `json:"registered_at"`
	LastAuthenticatedAt *time.Time `json:"last_authenticated_at,omitempty"`
	Active              bool       `json:"active"`
}

// ListDevicesResponse lists active devices.
type ListDevicesResponse struct {
	Devices []Device `json:"devices"`
}

// RenameDeviceRequest changes a device's display name.
type RenameDeviceRequest struct {
	Name string `json:"name"`
}

// ============================================================================
// Statistics & Audit Types
// ============================================================================

// StatsResponse reports authentication statistics since process start plus
// device counts from the registry.
type StatsResponse struct {
	TotalAttempts    uint64            `json:"total_attempts"`
	Accepted         uint64            `json:"accepted"`
	Rejected         uint64            `json:"rejected"`
	RejectedByReason map[string]uint64 `json:"rejected_by_reason"`
	ActionsExecuted  uint64            `json:"actions_executed"`
	ActionsFailed    uint64            `json:"actions_failed"`
	ActiveDevices    int64             `json:"active_devices"`
	Active24h        int64             `json:"active_24h"`
}

// AuditEvent is one recorded authentication decision.
type AuditEvent struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	Action     string    `json:"action,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ListAuditEventsResponse lists the most recent audit events, newest first.
type ListAuditEventsResponse struct {
	Events []AuditEvent `json:"events"`
}

// ============================================================================
// Trigger Types
// ============================================================================

// Trigger outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// ActionTrigger is the action that runs the configured hook.
const ActionTrigger = "TRIGGER"

// TriggerRequest is the authentication message a companion sends.
type TriggerRequest struct {
	DeviceID  string `json:"device_id"`
	TOTP      string `json:"totp"`
	Timestamp int64  `json:"timestamp"`
	Action    string `json:"action"`
}

// TriggerResponse is the service's decision on a trigger message.
type TriggerResponse struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Cipher indicates whether stored secrets can be sealed and opened
	Cipher string `json:"cipher"`
}
