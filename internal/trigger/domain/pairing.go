package domain

// Pairing is the one-time handoff produced when a device is registered. The
// secret leaves the process here and nowhere else.
type Pairing struct {
	DeviceID   string `json:"device_id"`
	Secret     string `json:"secret"` // base32, unpadded
	ServerURL  string `json:"server_url"`
	Name       string `json:"-"`
	OTPAuthURL string `json:"-"`
}
