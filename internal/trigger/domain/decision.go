package domain

type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// Reason is the public rejection code. It is safe to return to the sender and
// never reveals which check inside a step failed.
type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonMalformedMessage       Reason = "malformed_message"
	ReasonUnknownDevice          Reason = "unknown_device"
	ReasonStaleOrFutureTimestamp Reason = "stale_or_future_timestamp"
	ReasonInvalidCode            Reason = "invalid_code"
	ReasonReplayedCode           Reason = "replayed_code"
	ReasonInternalError          Reason = "internal_error"
)

// Decision is the result of evaluating one inbound payload.
type Decision struct {
	Outcome    Outcome
	Reason     Reason
	DeviceID   string // empty when the payload could not be decoded
	DeviceName string // set on acceptance only
	Action     string
}

func (d Decision) Accepted() bool { return d.Outcome == OutcomeAccepted }

func Accept(deviceID, deviceName, action string) Decision {
	return Decision{
		Outcome:    OutcomeAccepted,
		DeviceID:   deviceID,
		DeviceName: deviceName,
		Action:     action,
	}
}

func Reject(reason Reason, deviceID, action string) Decision {
	return Decision{
		Outcome:  OutcomeRejected,
		Reason:   reason,
		DeviceID: deviceID,
		Action:   action,
	}
}
