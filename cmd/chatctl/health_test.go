package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","timestamp":"2026-08-29T10:00:00Z"}`))
	}))
	defer server.Close()

	buf, err := runCommand(t, "health", "--backend", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "healthy (2026-08-29T10:00:00Z)\n", buf.String())
}

func TestHealth_BackendDown(t *testing.T) {
	server := httptest.NewServer(nil)
	server.Close()

	_, err := runCommand(t, "health", "--backend", server.URL)
	require.Error(t, err)
}
