package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

// LocalClient keys every request coming from the host or a docker bridge.
const LocalClient = "localhost"

var dockerGatewayRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1$`)

func IsLocalIP(ip net.IP) bool {
	return ip.IsLoopback() || dockerGatewayRegex.MatchString(ip.String())
}

// ClientIP returns the address of the caller, preferring the proxy headers
// over the connection's remote address.
func ClientIP(r *http.Request) (string, error) {
	addr := r.Header.Get("X-Real-Ip")
	if addr == "" {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			addr = strings.TrimSpace(strings.Split(forwarded, ",")[0])
		}
	}
	if addr == "" {
		addr = r.RemoteAddr
	}

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return "", fmt.Errorf("client address [%s] is invalid", addr)
	}
	if IsLocalIP(ip) {
		return LocalClient, nil
	}
	return ip.String(), nil
}
