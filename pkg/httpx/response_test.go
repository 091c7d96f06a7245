package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/firststore/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusNotFound, httpx.ErrCodeNotFound, "session not found")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, httpx.ErrorBody{Error: "not_found", ErrorDescription: "session not found"}, body)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Value string `json:"value"`
	}

	decode := func(body string) (payload, error) {
		var p payload
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &p)
		return p, err
	}

	p, err := decode(`{"value":"7"}`)
	require.NoError(t, err)
	require.Equal(t, "7", p.Value)

	p, err = decode(``)
	require.NoError(t, err)
	require.Empty(t, p.Value)

	_, err = decode(`{"value":"7","extra":true}`)
	require.Error(t, err)

	_, err = decode(`{"value":"7"}{"value":"8"}`)
	require.Error(t, err)

	_, err = decode(`not json`)
	require.Error(t, err)
}
