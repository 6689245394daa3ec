// Package applog is the process-wide leveled logger. Messages carry
// key/value pairs and are written as JSON lines through gommon's logger,
// the same logger echo uses, so request logs and application logs share
// one format.
package applog

import (
	"fmt"
	"io"
	"strings"

	"github.com/labstack/gommon/log"
)

var std = newLogger()

func newLogger() *log.Logger {
	l := log.New("rental")
	l.SetHeader(`{"time":"${time_rfc3339_nano}","level":"${level}","prefix":"${prefix}"}`)
	l.SetLevel(log.INFO)
	return l
}

// Logger exposes the underlying gommon logger so it can be installed as
// echo's logger.
func Logger() *log.Logger { return std }

// SetOutput redirects log output; tests use it to capture lines.
func SetOutput(w io.Writer) { std.SetOutput(w) }

// SetLevel accepts debug, info, warn, error or off. Unknown values keep INFO.
func SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		std.SetLevel(log.DEBUG)
	case "warn", "warning":
		std.SetLevel(log.WARN)
	case "error":
		std.SetLevel(log.ERROR)
	case "off":
		std.SetLevel(log.OFF)
	default:
		std.SetLevel(log.INFO)
	}
}

func Debug(msg string, kv ...any) { std.Debugj(fields(msg, kv)) }

func Info(msg string, kv ...any) { std.Infoj(fields(msg, kv)) }

func Warn(msg string, kv ...any) { std.Warnj(fields(msg, kv)) }

// Error logs msg with err attached under the "err" key.
func Error(msg string, err error, kv ...any) {
	j := fields(msg, kv)
	if err != nil {
		j["err"] = err.Error()
	}
	std.Errorj(j)
}

// fields turns alternating key/value arguments into a JSON map. A trailing
// key without a value is ignored.
func fields(msg string, kv []any) log.JSON {
	j := log.JSON{"msg": msg}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		switch v := kv[i+1].(type) {
		case error:
			j[key] = v.Error()
		case fmt.Stringer:
			j[key] = v.String()
		default:
			j[key] = v
		}
	}
	return j
}

// CronLogger satisfies robfig/cron's Logger interface.
type CronLogger struct{}

func (CronLogger) Info(msg string, keysAndValues ...interface{}) {
	Debug("cron: "+msg, keysAndValues...)
}

func (CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	Error("cron: "+msg, err, keysAndValues...)
}
