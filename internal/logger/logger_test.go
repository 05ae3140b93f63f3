package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"local", "dev", "prod"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewLogger(env, "", "")
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewLogger_Errors(t *testing.T) {
	_, err := NewLogger("docker", "", "")
	assert.ErrorContains(t, err, `unknown environment "docker"`)

	_, err = NewLogger("local", "loud", "")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qexpand.log")
	l, err := NewLogger("prod", "info", path)
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("round started")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "round started")
	assert.NotContains(t, string(data), "hidden")
}
