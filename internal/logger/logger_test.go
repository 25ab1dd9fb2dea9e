package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNew_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "error", Format: "json", Out: &buf})
	defer log.Close()

	log.Error().Str("url", "https://example.com/a.txt").Msg("download failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "download failed", entry["message"])
	assert.Equal(t, "https://example.com/a.txt", entry["url"])
	assert.Equal(t, "error", entry["level"])
}

func TestNew_WritesRotatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	log := New(Config{Level: "error", Format: "json", Path: dir, Out: &buf})

	log.Error().Msg("to file")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, buf.String(), "to file")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "error", Format: "json", Out: &buf})

	sub := log.WithComponent("naming")
	sub.Error().Msg("x")

	assert.Contains(t, buf.String(), `"component":"naming"`)
}

func TestDisabledStaysSilent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "off", Format: "json", Out: &buf})

	log.Error().Msg("hidden")

	assert.Empty(t, buf.String())
}
