package middleware

import (
	"context"
	"net/http"
)

// DetachCancel runs the handler on a context that keeps the request's values
// but not its cancellation. A backend call started for a client that then
// disconnects still completes and updates the shared session view.
func DetachCancel(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithoutCancel(r.Context())))
	})
}
