package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthServer(status int, body map[string]interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestRemote_Healthy(t *testing.T) {
	srv := healthServer(http.StatusOK, map[string]interface{}{"status": "healthy", "version": "1.0.0"})
	defer srv.Close()

	var out bytes.Buffer
	code := runRemoteHealthCheck(Config{URL: srv.URL, Timeout: time.Second, OutputFormat: "text"}, &out)

	assert.Equal(t, exitCodeSuccess, code)
	assert.Contains(t, out.String(), "Status: healthy")
}

func TestRemote_DegradedIsNotFailure(t *testing.T) {
	srv := healthServer(http.StatusOK, map[string]interface{}{"status": "degraded"})
	defer srv.Close()

	var out bytes.Buffer
	code := runRemoteHealthCheck(Config{URL: srv.URL, Timeout: time.Second, OutputFormat: "compact"}, &out)

	assert.Equal(t, exitCodeSuccess, code)
	assert.JSONEq(t, `{"status":"degraded"}`, out.String())
}

func TestRemote_Unhealthy(t *testing.T) {
	srv := healthServer(http.StatusServiceUnavailable, map[string]interface{}{"status": "unhealthy"})
	defer srv.Close()

	var out bytes.Buffer
	code := runRemoteHealthCheck(Config{URL: srv.URL, Timeout: time.Second, OutputFormat: "json"}, &out)

	assert.Equal(t, exitCodeFailure, code)
}

func TestRemote_UnreachableRetries(t *testing.T) {
	srv := healthServer(http.StatusOK, nil)
	url := srv.URL
	srv.Close()

	var out bytes.Buffer
	code := runRemoteHealthCheck(Config{
		URL:        url,
		Timeout:    200 * time.Millisecond,
		RetryCount: 1,
		RetryDelay: time.Millisecond,
		Verbose:    true,
	}, &out)

	assert.Equal(t, exitCodeError, code)
	assert.Contains(t, out.String(), "after 2 attempts")
	assert.Contains(t, out.String(), "attempt 1/1")
}

func TestLocal_EmbeddedCatalog(t *testing.T) {
	t.Setenv("NUTRIPLAN_CATALOG_SOURCE", "embedded")

	var out bytes.Buffer
	code := runLocalHealthCheck(Config{Timeout: 5 * time.Second, OutputFormat: "json"}, &out)
	require.Equal(t, exitCodeSuccess, code, out.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
