package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		var req struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "roaming tariffs", req.Query)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"query":"roaming tariffs","results":"Document 1: tariff table"}`))
	}))
	defer server.Close()

	buf, err := runCommand(t, "search", "roaming tariffs", "--backend", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Document 1: tariff table\n", buf.String())
}

func TestSearch_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"kb down"}`))
	}))
	defer server.Close()

	_, err := runCommand(t, "search", "query", "--backend", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kb down")
}
