package middleware

import (
	"net"
	"net/http"

	"github.com/cloo-solutions/sentisearch/internal/api"
)

// MaxBodyBytes limits request body size. Photos are posted as data URLs, so
// the limit must leave room for base64 overhead.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// LoopbackOnly rejects requests that do not come from the local machine. The
// session surface has no authentication.
func LoopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
			api.Error(w, http.StatusForbidden, "only local clients may use this session")
			return
		}
		next.ServeHTTP(w, r)
	})
}
