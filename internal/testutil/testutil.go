// Package testutil provides testing utilities for integration tests.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"

	"github.com/rs/zerolog"
)

// Logger returns a debug-level logger that writes through t.Log, so output
// only shows for failing or verbose tests.
func Logger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// RequireCurl skips the test when no curl binary is on PATH and returns
// the resolved path otherwise.
func RequireCurl(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("curl")
	if err != nil {
		t.Skip("curl not installed")
	}
	return path
}

// FileServer serves each entry of files at its key and 404 for anything
// else. The server is closed when the test ends.
func FileServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
