package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	reqctx "github.com/baechuer/bridge-auth/internal/pkg/context"
)

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter reads LOG_LEVEL (default info) and LOG_FORMAT
// ("json" or "console", default console) and installs the global logger.
func InitWithWriter(w io.Writer) {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || os.Getenv("LOG_LEVEL") == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = w
	if os.Getenv("LOG_FORMAT") != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(out).
		With().
		Timestamp().
		Str("service", "bridge-auth").
		Logger().
		Level(level)

	zlog.Logger = Logger
}

// WithCtx returns the global logger tagged with the request id, if any.
func WithCtx(ctx context.Context) *zerolog.Logger {
	l := Logger
	if id := reqctx.GetRequestID(ctx); id != "" {
		l = l.With().Str("request_id", id).Logger()
	}
	return &l
}
