package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	envLogLevel  = "DIRSYNC_LOG_LEVEL"
	envLogFormat = "DIRSYNC_LOG_FORMAT"
)

type LogConfig struct {
	Level   string
	Format  string
	NoColor bool
}

// InitLogger builds the process logger and installs it as the zerolog
// global. DIRSYNC_LOG_LEVEL and DIRSYNC_LOG_FORMAT override the config
// when set. Unknown levels fall back to info.
func InitLogger(app string, cfg LogConfig) zerolog.Logger {
	if env := os.Getenv(envLogLevel); env != "" {
		cfg.Level = env
	}
	if env := os.Getenv(envLogFormat); env != "" {
		cfg.Format = env
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
			level = parsed
		}
	}

	var output io.Writer = os.Stdout
	if strings.ToLower(cfg.Format) != "json" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
