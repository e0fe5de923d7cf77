// Package listener provides Unix socket and TCP listeners for the daemon.
package listener

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/switchboard-io/switchboard/internal/config"
)

// New creates a listener from cfg. A configured TCP address takes
// precedence over the Unix socket path.
//
// TCP listeners are restricted to loopback addresses unless
// cfg.AllowRemote is set. Unix sockets are created with 0600
// permissions; a stale file at the socket path is removed first.
func New(cfg config.ListenConfig) (net.Listener, error) {
	if cfg.TCPAddr != "" {
		return newTCP(cfg.TCPAddr, cfg.AllowRemote)
	}
	if cfg.SocketPath != "" {
		return newUnix(cfg.SocketPath)
	}
	return nil, fmt.Errorf("no listener configured: set socket_path or tcp_addr")
}

func newTCP(addr string, allowRemote bool) (net.Listener, error) {
	if !allowRemote && isRemoteAddr(addr) {
		return nil, fmt.Errorf("refusing to listen on non-loopback address %q without allow_remote", addr)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}

func newUnix(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	// Remove a stale socket or leftover file from a previous run.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove existing socket file: %w", err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on socket %s: %w", path, err)
	}

	if err := os.Chmod(path, 0600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}
	return ln, nil
}

// isRemoteAddr reports whether addr would bind beyond loopback.
func isRemoteAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		// Portless forms like "::" bind all interfaces.
		host = addr
	}
	if host == "" {
		return true
	}
	if host == "localhost" {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		// A hostname other than localhost may resolve anywhere.
		return true
	}
	return !ip.IsLoopback()
}

// ParseDaemonHost parses a daemon address (SWITCHBOARD_HOST or --host)
// into listen config for the client side. Supported forms are
// "unix:///path/to.sock", "tcp://host:port", and "https://host:port".
// An empty value returns nil, meaning "use the configured default".
func ParseDaemonHost(host string) (*config.ListenConfig, error) {
	if host == "" {
		return nil, nil
	}

	switch {
	case strings.HasPrefix(host, "unix://"):
		return &config.ListenConfig{SocketPath: strings.TrimPrefix(host, "unix://")}, nil
	case strings.HasPrefix(host, "tcp://"):
		return &config.ListenConfig{TCPAddr: strings.TrimPrefix(host, "tcp://")}, nil
	case strings.HasPrefix(host, "https://"):
		return &config.ListenConfig{TCPAddr: strings.TrimPrefix(host, "https://")}, nil
	case strings.HasPrefix(host, "http://"):
		return nil, fmt.Errorf("http:// is not supported, use https:// or tcp://")
	default:
		return nil, fmt.Errorf("invalid daemon host %q: expected unix://, tcp://, or https:// scheme", host)
	}
}
