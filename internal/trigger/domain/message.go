package domain

// MaxMessageSize caps an inbound trigger payload.
const MaxMessageSize = 4 << 10

// ActionTrigger is the only action that runs the configured hook.
const ActionTrigger = "TRIGGER"

// AuthMessage is the JSON payload a companion app sends for every trigger.
type AuthMessage struct {
	DeviceID  string `json:"device_id" validate:"required,max=128,printascii"`
	TOTP      string `json:"totp" validate:"required,len=6,number"`
	Timestamp int64  `json:"timestamp" validate:"required,gt=0"`
	Action    string `json:"action" validate:"required,max=64,printascii"`
}
