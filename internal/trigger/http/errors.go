package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/service"
	"github.com/aussiebroadwan/bluezscript/pkg/httpx"
	"github.com/aussiebroadwan/bluezscript/pkg/slogx"
	"github.com/aussiebroadwan/bluezscript/pkg/triggersdk"
)

// writeServiceError maps registry errors onto status codes. Anything
// unrecognised is logged and reported as a server error.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrDuplicateDevice):
		httpx.WriteError(w, http.StatusConflict, triggersdk.ErrorCodeDuplicateDevice, "device already registered")
	case errors.Is(err, service.ErrUnknownDevice):
		httpx.WriteError(w, http.StatusNotFound, triggersdk.ErrorCodeUnknownDevice, "device not found")
	case errors.Is(err, service.ErrInvalidDeviceID):
		httpx.WriteError(w, http.StatusBadRequest, triggersdk.ErrorCodeInvalidRequest,
			"device_id must be 1-128 characters of letters, digits, '.', '_' or '-'")
	case errors.Is(err, service.ErrInvalidDeviceName):
		httpx.WriteError(w, http.StatusBadRequest, triggersdk.ErrorCodeInvalidRequest,
			"name must be at most 64 characters")
	default:
		slogx.FromContext(ctx).Error("failed to "+op, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, triggersdk.ErrorCodeServerError, "Failed to "+op)
	}
}
