package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLoggerLevelsFilterConsole(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	Configure("", WARN)
	defer Configure("", INFO)

	l, err := NewLogger("test")
	require.NoError(t, err)

	l.Info("не должно появиться")
	l.Warn("чанк %d", 7)

	out := buf.String()
	assert.NotContains(t, out, "не должно появиться")
	assert.Contains(t, out, "[WARN] чанк 7")
	assert.Contains(t, out, "[test]")
}

func TestLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	Configure(dir, INFO)
	defer Configure("", INFO)

	l, err := NewLogger("world")
	require.NoError(t, err)
	l.Debug("отладка %s", "генерации")
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(dir, "world_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] отладка генерации")
	assert.NotContains(t, buf.String(), "отладка", "DEBUG не выводится в консоль при уровне INFO")
}

func TestManagerReturnsSameLogger(t *testing.T) {
	a := GetComponentLogger("manager-test")
	b := GetComponentLogger("manager-test")
	assert.Same(t, a, b)

	require.NoError(t, GetLoggerManager().SetLogLevel("manager-test", ERROR, ERROR))
	assert.ErrorIs(t, GetLoggerManager().SetLogLevel("missing-component", INFO, INFO), ErrUnknownComponent)
	assert.Contains(t, GetLoggerManager().Components(), "manager-test")
}
