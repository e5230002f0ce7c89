package log

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/clientstage/internal/errors"
)

func newJSONLogger(buf *bytes.Buffer, level Level) *Logger {
	return New(Config{Level: level, Format: FormatJSON, Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.Info("shown", "stage", "inventory")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "inventory", entries[0]["stage"])
}

func TestWithErrorStepError(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelDebug)

	err := fmt.Errorf("build: %w", errors.NewCommandFailure("./gradlew clean test", stderrors.New("exit status 1")))
	logger.WithError(err).Error("step failed")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "CMD-001", entries[0]["error_code"])
	assert.Equal(t, "exit status 1", entries[0]["cause"])
	assert.NotEmpty(t, entries[0]["suggestions"])
}

func TestWithErrorPlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelDebug)

	logger.WithError(stderrors.New("boom")).Warn("ignored")
	logger.WithError(nil).Info("no error")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "boom", entries[0]["error"])
	assert.NotContains(t, entries[1], "error")
}

func TestLineWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelDebug)

	w := logger.LineWriter(LevelDebug, "git")
	_, err := fmt.Fprint(w, "On branch regen\nnothing to commit")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "On branch regen", entries[0]["line"])
	assert.Equal(t, "nothing to commit", entries[1]["line"])
}

func TestLineWriterFuncFiltersLines(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelDebug)

	w := logger.LineWriterFunc(LevelDebug, "git", strings.ToUpper)
	_, err := fmt.Fprint(w, "remote: ok\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "REMOTE: OK", entries[0]["line"])
}

func TestParseLevelAndFormat(t *testing.T) {
	level, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)

	format, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)
	assert.Equal(t, "json", format.String())

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestDefaultLogger(t *testing.T) {
	custom := Discard()
	SetDefaultLogger(custom)
	defer SetDefaultLogger(nil)

	assert.Same(t, custom, DefaultLogger())
	assert.Same(t, custom, OrDefault(nil))
}
