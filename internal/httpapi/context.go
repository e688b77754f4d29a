package httpapi

import (
	"context"
	"net/http"
)

// serverBaseCtx is canceled when shutdown gives up draining in-flight requests.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level context. nil resets to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// requestContext derives a handler context from r that is also canceled when
// the server base context ends. Request-scoped values (request ID) survive.
// The returned cancel func must be called when the handler ends.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(r.Context())
	stop := context.AfterFunc(serverBaseCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
