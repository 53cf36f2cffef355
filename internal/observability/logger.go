package observability

import (
	"io"
	"os"
	"time"

	"github.com/Mainframe-Renewal-Project/sear/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func InitLogger(app string) zerolog.Logger {
	return InitLoggerTo(os.Stderr, app)
}

// InitLoggerTo installs a console logger writing to out as the global logger.
func InitLoggerTo(out io.Writer, app string) zerolog.Logger {
	cfg := logging.Current()
	output := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    cfg.NoColor,
		TimeFormat: time.RFC3339,
	}
	ctx := zerolog.New(output).With().Str("app", app)
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	logger := ctx.Logger()
	log.Logger = logger
	return logger
}
