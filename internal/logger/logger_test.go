package logger

import (
	"bytes"
	"encoding/json/v2"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json", Level: slog.LevelInfo})

	log.Info("search dispatched", "query", "944 water pump", "connectors", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "search dispatched", line["msg"])
	assert.Equal(t, "944 water pump", line["query"])
	assert.Equal(t, float64(3), line["connectors"])
	assert.Equal(t, "INFO", line["level"])
}

func TestNewDefaultsToJSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production"})

	log.Info("snapshot recorded")

	assert.True(t, strings.HasPrefix(buf.String(), "{"), "production should emit JSON: %s", buf.String())
}

func TestNewDefaultsToPrettyInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "development"})

	log.Info("snapshot recorded")

	out := buf.String()
	assert.False(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, "snapshot recorded")
	assert.Contains(t, out, "INF")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json", Level: slog.LevelWarn})

	log.Debug("connector cache hit")
	log.Info("connector searched")
	assert.Empty(t, buf.String())

	log.Warn("connector timed out", "source", "rockauto")
	assert.Contains(t, buf.String(), "connector timed out")
}

func TestPrettyHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty"})

	log.Info("listing grouped", "part_number", "AL0188X", "sources", 2)

	out := buf.String()
	assert.Contains(t, out, "part_number=AL0188X")
	assert.Contains(t, out, "sources=2")
}

func TestPrettyHandlerWithAttrsCarriesContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty"})

	scoped := log.With("source", "fcpeuro")
	scoped.Info("scrape complete")

	assert.Contains(t, buf.String(), "source=fcpeuro")
}

func TestPrettyHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", Level: slog.LevelDebug})

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	out := buf.String()
	for _, marker := range []string{"DBG", "INF", "WRN", "ERR"} {
		assert.Contains(t, out, marker)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.WithError(assert.AnError).Error("fetch failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, assert.AnError.Error(), line["error"])
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.WithField("vin", "WP0AA0944HN150000").Info("decoded")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WP0AA0944HN150000", line["vin"])
}

func TestSourceShortening(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json", AddSource: true})

	log.Info("with source")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	source, ok := line["source"].(map[string]any)
	require.True(t, ok)
	file, _ := source["file"].(string)
	assert.NotContains(t, file, "/", "source file should be trimmed to its base name")
}
