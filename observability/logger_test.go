package observability

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitLoggerLevels(t *testing.T) {
	logger := InitLogger("test", LogConfig{Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger = InitLogger("test", LogConfig{})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = InitLogger("test", LogConfig{Level: "chatty"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestInitLoggerEnvOverride(t *testing.T) {
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envLogFormat, "json")

	logger := InitLogger("test", LogConfig{Level: "error"})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
