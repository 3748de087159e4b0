package utils

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP resolves the caller's address, honoring the proxy header when
// the backend is shared over a network. The header may carry a hop list; the
// leftmost entry is the originating client.
func RealClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
