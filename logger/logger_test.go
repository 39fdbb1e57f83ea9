package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	testCases := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, test := range testCases {
		logger := New(test.level, false)
		require.Equal(t, test.expected, logger.GetLevel(), test.level)
		require.Equal(t, test.expected, log.Logger.GetLevel(), test.level)
	}
}
