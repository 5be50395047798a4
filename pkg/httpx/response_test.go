package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/bluezscript/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusConflict, "duplicate_device", "device already registered")

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body httpx.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "duplicate_device", body.Error)
	require.Equal(t, "device already registered", body.ErrorDescription)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	decode := func(body string, allowEmpty bool) (payload, error) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return p, httpx.DecodeJSON(req, &p, allowEmpty)
	}

	p, err := decode(`{"name":"phone"}`, false)
	require.NoError(t, err)
	require.Equal(t, "phone", p.Name)

	_, err = decode(``, true)
	require.NoError(t, err)

	_, err = decode(``, false)
	require.Error(t, err)

	_, err = decode(`{"name":"phone","extra":1}`, false)
	require.Error(t, err)

	_, err = decode(`{"name":"phone"}{}`, false)
	require.Error(t, err)
}
