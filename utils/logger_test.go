package utils

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	require.Equal(t, logrus.WarnLevel, ParseLogLevel("warning"))
	require.Equal(t, logrus.ErrorLevel, ParseLogLevel("error"))
	require.Equal(t, logrus.InfoLevel, ParseLogLevel("chatty"))
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	logger := NewLogger("debug", path)
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())
	logger.Debug("hello")
	require.FileExists(t, path)
}
