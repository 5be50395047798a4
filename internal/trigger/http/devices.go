package http

import (
	"net/http"

	"github.com/aussiebroadwan/bluezscript/internal/trigger/domain"
	"github.com/aussiebroadwan/bluezscript/internal/trigger/service"
	"github.com/aussiebroadwan/bluezscript/pkg/httpx"
	"github.com/aussiebroadwan/bluezscript/pkg/slogx"
	"github.com/aussiebroadwan/bluezscript/pkg/triggersdk"
)

// DevicesHandler handles the operator device management endpoints.
type DevicesHandler struct {
	Registry *service.Registry
}

func toDeviceResponse(d domain.Device) triggersdk.Device {
	return triggersdk.Device{
		ID:                  d.ID,
		Name:                d.Name,
		RegisteredAt:        d.RegisteredAt,
		LastAuthenticatedAt: d.LastAuthenticatedAt,
		Active:              d.Active,
	}
}

// HandlePair handles POST /v1/devices
//
//	@Summary		Pair Device
//	@Description	Registers a device and returns the one-time pairing payload with a fresh shared secret.
//	@Description	The secret is never returned again. The QR code encodes {device_id, secret, server_url}.
//	@Tags			Devices
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		triggersdk.PairRequest	true	"Device id (optional) and display name"
//	@Success		201		{object}	triggersdk.PairResponse	"pairing payload"
//	@Failure		400		{object}	triggersdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	triggersdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	triggersdk.ErrorResponse	"device already registered"
//	@Failure		429		{object}	triggersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/devices [post].
func (h *DevicesHandler) HandlePair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req triggersdk.PairRequest
	if err := httpx.DecodeJSON(r, &req, true); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, triggersdk.ErrorCodeInvalidRequest, "Invalid JSON in request body")
		return
	}

	pairing, err := h.Registry.Register(ctx, req.DeviceID, req.Name)
	if err != nil {
		writeServiceError(ctx, w, err, "register device")
		return
	}

	qr, err := pairingQR(pairing)
	if err != nil {
		// The device exists; the payload is still usable without the image.
		log.Error("failed to render pairing QR code", "device_id", pairing.DeviceID, "error", err)
	}

	httpx.WriteJSON(w, http.StatusCreated, triggersdk.PairResponse{
		DeviceID:   pairing.DeviceID,
		Name:       pairing.Name,
		Secret:     pairing.Secret,
		ServerURL:  pairing.ServerURL,
		OTPAuthURL: pairing.OTPAuthURL,
		QRCode:     qr,
	})
}

// HandleList handles GET /v1/devices
//
//	@Summary		List Devices
//	@Description	Returns all active devices, newest first. Secrets are never included.
//	@Tags			Devices
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	triggersdk.ListDevicesResponse	"active devices"
//	@Failure		401	{object}	triggersdk.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	triggersdk.ErrorResponse		"error, error_description"
//	@Router			/v1/devices [get].
func (h *DevicesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	devices, err := h.Registry.ListActive(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "list devices")
		return
	}

	out := make([]triggersdk.Device, len(devices))
	for i, d := range devices {
		out[i] = toDeviceResponse(d)
	}

	httpx.WriteJSON(w, http.StatusOK, triggersdk.ListDevicesResponse{Devices: out})
}

// HandleGet handles GET /v1/devices/{id}
//
//	@Summary		Get Device
//	@Tags			Devices
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"Device ID"
//	@Success		200	{object}	triggersdk.Device		"device"
//	@Failure		401	{object}	triggersdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	triggersdk.ErrorResponse	"device not found or revoked"
//	@Router			/v1/devices/{id} [get].
func (h *DevicesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dev, err := h.Registry.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeServiceError(ctx, w, err, "load device")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toDeviceResponse(dev))
}

// HandleRename handles PATCH /v1/devices/{id}
//
//	@Summary		Rename Device
//	@Tags			Devices
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Device ID"
//	@Param			request	body		triggersdk.RenameDeviceRequest	true	"New display name"
//	@Success		200		{object}	triggersdk.Device				"renamed device"
//	@Failure		400		{object}	triggersdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	triggersdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	triggersdk.ErrorResponse		"device not found or revoked"
//	@Router			/v1/devices/{id} [patch].
func (h *DevicesHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req triggersdk.RenameDeviceRequest
	if err := httpx.DecodeJSON(r, &req, false); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, triggersdk.ErrorCodeInvalidRequest, "Invalid JSON in request body")
		return
	}

	if err := h.Registry.Rename(ctx, id, req.Name); err != nil {
		writeServiceError(ctx, w, err, "rename device")
		return
	}

	dev, err := h.Registry.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, w, err, "load device")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toDeviceResponse(dev))
}

// HandleRevoke handles POST /v1/devices/{id}/revoke
//
//	@Summary		Revoke Device
//	@Description	Deactivates a device. Its record is kept; the id cannot be paired again.
//	@Tags			Devices
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Device ID"
//	@Success		204	"device revoked"
//	@Failure		401	{object}	triggersdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	triggersdk.ErrorResponse	"device not found"
//	@Router			/v1/devices/{id}/revoke [post].
func (h *DevicesHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Registry.Revoke(ctx, r.PathValue("id")); err != nil {
		writeServiceError(ctx, w, err, "revoke device")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
