package logsvc

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// ZerologLogger is the dev/console implementation of core.Logger.
type ZerologLogger struct {
	log     zerolog.Logger
	enabled bool
}

var _ core.Logger = (*ZerologLogger)(nil)

func NewZerologLogger(conf *core.Config, out ...io.Writer) *ZerologLogger {
	var w io.Writer = os.Stdout
	if len(out) > 0 {
		w = out[0]
	}
	if conf.Debug {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log := zerolog.New(w).With().Timestamp().Str("app", conf.AppName).Logger()
	return &ZerologLogger{log: log, enabled: true}
}

func (l *ZerologLogger) Enable(enabled bool) {
	l.enabled = enabled
}

// expected args: error and/or user.Principal, in any order
func (l *ZerologLogger) event(ev *zerolog.Event, msg string, args []interface{}) {
	if !l.enabled {
		return
	}
	for _, arg := range args {
		switch arg := arg.(type) {
		case error:
			ev = ev.Err(arg)
		case user.Principal:
			ev = ev.Str("principal", arg.ID).Str("tenant", arg.TenantID)
		default:
			ev = ev.Interface("detail", arg)
		}
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Debug(msg string, args ...interface{}) {
	l.event(l.log.Debug(), msg, args)
}

func (l *ZerologLogger) Info(msg string, args ...interface{}) {
	l.event(l.log.Info(), msg, args)
}

func (l *ZerologLogger) Warn(msg string, args ...interface{}) {
	l.event(l.log.Warn(), msg, args)
}

func (l *ZerologLogger) Error(msg string, args ...interface{}) {
	l.event(l.log.Error(), msg, args)
}
