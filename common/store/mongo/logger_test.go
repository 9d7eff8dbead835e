package mongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		m := map[string]any{}
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestLoggerSinkLevelsAndFields(t *testing.T) {
	buf := &bytes.Buffer{}
	l := &logger{log: zerolog.New(buf).Level(zerolog.TraceLevel)}

	l.Info(1, "connected", "host", "db:27017", "attempt", 2)
	l.Info(2, "command", "name")
	l.Error(errors.New("boom"), "failed", "op", "insert")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "db:27017", lines[0]["host"])
	assert.EqualValues(t, 2, lines[0]["attempt"])
	assert.Equal(t, "debug", lines[1]["level"])
	assert.Contains(t, lines[1], "name")
	assert.Equal(t, "error", lines[2]["level"])
	assert.Equal(t, "boom", lines[2]["error"])
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.Enabled())
	assert.Equal(t, DefaultDatabase, cfg.databaseName())
	assert.Equal(t, DefaultCollection, cfg.collectionName())

	cfg = &Config{ClientConfig: ClientConfig{URI: "mongodb://x"}, Database: "d", Collection: "c"}
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "d", cfg.databaseName())
	assert.Equal(t, "c", cfg.collectionName())
}
