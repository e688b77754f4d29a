package httpapi

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off":
		return LevelOff
	case "error":
		return LevelError
	case "info", "":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("AUTHD_HTTP_LOG_LEVEL"))

// SetDefaultLogLevel overrides the per-request default level.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

func logStart(r *http.Request, msg string) {
	if requestLogLevel(r) < LevelDebug {
		return
	}
	if zlog != nil {
		z := zlog.Debug().Str("path", r.URL.Path)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Msg(msg)
		return
	}
	log.Printf("%s path=%s", msg, r.URL.Path)
}

func logEnd(r *http.Request, msg string, status int, start time.Time, err error) {
	if requestLogLevel(r) < LevelInfo {
		return
	}
	var dur time.Duration
	if !start.IsZero() {
		dur = time.Since(start)
	}
	if zlog != nil {
		z := zlog.Info().Int("status", status).Str("path", r.URL.Path).Dur("dur", dur)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		if err != nil {
			z = z.Err(err)
		}
		z.Msg(msg)
		return
	}
	log.Printf("%s status=%d path=%s dur=%s err=%v", msg, status, r.URL.Path, dur, err)
}

func logError(r *http.Request, msg string, err error) {
	if requestLogLevel(r) < LevelError {
		return
	}
	if zlog != nil {
		z := zlog.Error().Err(err).Str("path", r.URL.Path)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Msg(msg)
		return
	}
	log.Printf("%s path=%s err=%v", msg, r.URL.Path, err)
}
