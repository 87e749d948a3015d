package net

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"VectorBoard/internal/logx"
)

var ErrBadLink = errors.New("bad share link")

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// Offline: fall back to the interfaces.
		return getLocalIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

func getLocalIPFallback() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String(), nil
		}
	}
	logx.For("net").Warn("no LAN address found, share link uses loopback")
	return "127.0.0.1", nil
}

// ShareLink builds the link viewers are started with, e.g.
// vectorboard://192.168.1.4:8888.
func ShareLink(scheme, host string, port int) string {
	return scheme + net.JoinHostPort(host, strconv.Itoa(port))
}

// ParseShareLink returns the host:port of a link made by ShareLink.
func ParseShareLink(scheme, link string) (string, error) {
	rest, ok := strings.CutPrefix(link, scheme)
	if !ok {
		return "", fmt.Errorf("%w: %q does not start with %s", ErrBadLink, link, scheme)
	}
	addr := strings.TrimSuffix(rest, "/")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadLink, err)
	}
	if host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrBadLink, link)
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return "", fmt.Errorf("%w: port %q", ErrBadLink, port)
	}
	return addr, nil
}

// IsShareLink reports whether arg looks like a share link for scheme.
func IsShareLink(scheme, arg string) bool {
	return strings.HasPrefix(arg, scheme)
}
