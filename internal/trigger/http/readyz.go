package http

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/store"
	"github.com/aussiebroadwan/bluezscript/pkg/cryptox"
	"github.com/aussiebroadwan/bluezscript/pkg/httpx"
	"github.com/aussiebroadwan/bluezscript/pkg/triggersdk"
)

var probePlaintext = []byte("readyz")

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of the database and the secret cipher
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	triggersdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	triggersdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	cipher *cryptox.SecretCipher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &triggersdk.HealthChecks{
			Database: "ok",
			Cipher:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := probeCipher(cipher); err != nil {
			checks.Cipher = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, triggersdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}

// probeCipher seals and opens a throwaway value with the master key.
func probeCipher(c *cryptox.SecretCipher) error {
	if c == nil {
		return errors.New("no master key loaded")
	}
	blob, err := c.Encrypt(probePlaintext, nil)
	if err != nil {
		return err
	}
	out, err := c.Decrypt(blob, nil)
	if err != nil {
		return err
	}
	if !bytes.Equal(out, probePlaintext) {
		return errors.New("round trip mismatch")
	}
	return nil
}
