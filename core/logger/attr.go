package logger

import (
	"log/slog"
	"time"
)

// Helpers that take a possibly empty value return the zero Attr, which slog
// drops, so call sites can pass them unconditionally:
//
//	log.Warn("refresh failed", logger.Error(err), logger.Subject(sub))

// Error records err under "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Key records an arbitrary value. A nil value is dropped.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}

func Component(name string) slog.Attr { return slog.String("component", name) }
func Action(action string) slog.Attr  { return slog.String("action", action) }
func Result(result string) slog.Attr  { return slog.String("result", result) }
func Event(name string) slog.Attr     { return slog.String("event", name) }

// Duration records a configured duration such as a timeout.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed records the time spent since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Outgoing HTTP requests.

func Method(method string) slog.Attr { return slog.String("method", method) }
func Path(path string) slog.Attr     { return slog.String("path", path) }
func StatusCode(code int) slog.Attr  { return slog.Int("status_code", code) }

// RequestID records the X-Request-ID sent with a request.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Session.

// Subject records the token's sub claim.
func Subject(sub string) slog.Attr {
	if sub == "" {
		return slog.Attr{}
	}
	return slog.String("subject", sub)
}

// Reason records a logout reason key.
func Reason(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("reason", key)
}

// StoreKey records a session store key. Values are never logged.
func StoreKey(key string) slog.Attr {
	return slog.String("store_key", key)
}
