package domain

import "time"

// UnknownDeviceID is recorded when a payload did not yield a device id.
const UnknownDeviceID = "unknown"

// AuditEvent records one evaluation. It never carries a secret or a code.
type AuditEvent struct {
	ID         string // ULID
	DeviceID   string
	Outcome    Outcome
	Reason     Reason
	Action     string
	OccurredAt time.Time
}

// AuditEventFor builds the audit record for a decision.
func AuditEventFor(id string, d Decision, at time.Time) AuditEvent {
	deviceID := d.DeviceID
	if deviceID == "" {
		deviceID = UnknownDeviceID
	}
	return AuditEvent{
		ID:         id,
		DeviceID:   deviceID,
		Outcome:    d.Outcome,
		Reason:     d.Reason,
		Action:     d.Action,
		OccurredAt: at,
	}
}
