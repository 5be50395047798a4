/*
Package triggersdk provides a client SDK for the BluezScript trigger service.

# Overview

The SDKClient covers the public health probes, the trigger endpoint used by a
paired companion, and the operator API for pairing and managing devices. The
operator endpoints require the admin token configured on the server:

	client := triggersdk.NewSDKClient("http://localhost:8080", adminToken)

	pairing, err := client.PairDevice(ctx, triggersdk.PairRequest{
		DeviceID: "pixel-7",
		Name:     "Pixel 7",
	})

A companion holding the pairing payload builds trigger messages from the
shared secret:

	msg, err := triggersdk.NewTriggerRequest(pairing.DeviceID, pairing.Secret, time.Now())
	res, err := client.SendTrigger(ctx, msg)
	if res.Outcome == triggersdk.OutcomeAccepted {
		// the hook is running
	}

# Errors

Non-2xx responses (other than rejected trigger decisions) are returned as
*APIError carrying the status code and the server's error code.
*/
package triggersdk
