package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"model-graphql/internal/logging"
)

// RecoveryMiddleware turns a handler panic into a 500 response and an error log entry.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.FromContext(r.Context()).ErrorContext(r.Context(), "handler panic",
					slog.String("panic", fmt.Sprint(rec)),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
