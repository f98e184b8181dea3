package httpapi

import (
	"context"
	"errors"
	"net/http"
)

// errShutdown is the cancel cause of requests cut short by server shutdown.
var errShutdown = errors.New("server shutting down")

// serverBaseCtx is canceled on shutdown. Defaults to Background.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// translateContext derives the context a /translate request runs under. It
// ends when the client goes away, when the server shuts down (cause
// errShutdown) or after the configured translate timeout.
func translateContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(r.Context())
	stop := context.AfterFunc(serverBaseCtx, func() { cancel(errShutdown) })
	tctx, tcancel := ctx, context.CancelFunc(func() {})
	if settings.TranslateTimeout > 0 {
		tctx, tcancel = context.WithTimeout(ctx, settings.TranslateTimeout)
	}
	return tctx, func() {
		tcancel()
		stop()
		cancel(nil)
	}
}

// shuttingDown reports whether ctx was canceled by server shutdown.
func shuttingDown(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), errShutdown)
}
