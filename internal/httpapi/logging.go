package httpapi

import (
	"bytes"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the HTTP layer logger. It discards everything until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs the structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l.With().Str("component", "http").Logger() }

// envLogLevel, when set, overrides the logger level for every request.
var envLogLevel = os.Getenv("MTBENCH_LOG_LEVEL")

// parseLevel maps a level name to a zerolog level. "" and "off" disable
// request logging, "1" is shorthand for debug and unknown names mean info.
func parseLevel(s string) zerolog.Level {
	switch s = strings.ToLower(s); s {
	case "", "off":
		return zerolog.Disabled
	case "1":
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// requestLogger returns the logger for one request. A ?log= query parameter
// wins over the X-Log-Level header, which wins over MTBENCH_LOG_LEVEL. With
// none of them the installed logger is used as is.
func requestLogger(r *http.Request) zerolog.Logger {
	l := zlog
	switch {
	case r.URL.Query().Get("log") != "":
		l = l.Level(parseLevel(r.URL.Query().Get("log")))
	case r.Header.Get("X-Log-Level") != "":
		l = l.Level(parseLevel(r.Header.Get("X-Log-Level")))
	case envLogLevel != "":
		l = l.Level(parseLevel(envLogLevel))
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		l = l.With().Str("request_id", rid).Logger()
	}
	return l
}

// lineLogger logs every complete NDJSON line written through it at debug level.
type lineLogger struct {
	log zerolog.Logger
	buf []byte
}

func (ll *lineLogger) Write(p []byte) (int, error) {
	ll.buf = append(ll.buf, p...)
	for {
		i := bytes.IndexByte(ll.buf, '\n')
		if i < 0 {
			break
		}
		if i > 0 {
			ll.log.Debug().RawJSON("line", ll.buf[:i]).Msg("translate>")
		}
		ll.buf = ll.buf[i+1:]
	}
	return len(p), nil
}
