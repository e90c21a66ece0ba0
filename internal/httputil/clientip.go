package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the originating client address of a request.
//
// Deployments behind reverse proxies must recover the real client rather
// than the proxy hop, so forwarding headers take precedence over the socket
// address:
//  1. First comma-separated entry of X-Forwarded-For, trimmed.
//  2. X-Real-IP.
//  3. Host part of RemoteAddr.
//
// Returns an empty string when no address is available.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if r.RemoteAddr == "" {
		return ""
	}

	// RemoteAddr is host:port for TCP connections, but may be a bare
	// address in tests or on unix sockets.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
