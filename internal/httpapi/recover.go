package httpapi

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// maxStackBytes caps the stack logged for a recovered panic.
const maxStackBytes = 2048

// Recoverer turns panics into a 500 JSON response and logs a truncated stack.
// The process keeps serving.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}
			err := fmt.Errorf("panic: %v", rv)
			stack := debug.Stack()
			if len(stack) > maxStackBytes {
				stack = stack[:maxStackBytes]
			}
			if zlog != nil {
				zlog.Error().Err(err).Str("path", r.URL.Path).Bytes("stack", stack).Msg("server error")
			} else {
				logError(r, "server error", fmt.Errorf("%w\n%s", err, stack))
			}
			writeJSONError(w, http.StatusInternalServerError, msgInternal, err.Error())
		}()
		next.ServeHTTP(w, r)
	})
}
