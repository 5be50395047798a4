package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
)

const qrSize = 256

// pairingQR renders the pairing handoff as a PNG data URL. The QR content is
// exactly the JSON payload a companion app scans.
func pairingQR(p domain.Pairing) (string, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode pairing payload: %w", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
