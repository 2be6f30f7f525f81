package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugRouter_Healthz(t *testing.T) {
	srv := httptest.NewServer(newDebugRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestDebugRouter_Metrics(t *testing.T) {
	srv := httptest.NewServer(newDebugRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "# HELP")
}

func TestDebugServer_Addr(t *testing.T) {
	srv := newDebugServer("127.0.0.1:9321")
	assert.Equal(t, "127.0.0.1:9321", srv.Addr)
	assert.NotNil(t, srv.Handler)
}
