package listener

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/switchboard-io/switchboard/internal/config"
)

func TestNew_UnixSocket(t *testing.T) {
	tmpDir := t.TempDir()
	socketPath := filepath.Join(tmpDir, "test.sock")

	cfg := config.ListenConfig{
		SocketPath: socketPath,
	}

	ln, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ln.Close()

	info, err := os.Stat(socketPath)
	if err != nil {
		t.Fatalf("Socket file not created: %v", err)
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		t.Errorf("Socket permissions = %o, want 0600", mode)
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to connect to socket: %v", err)
	}
	conn.Close()
}

func TestNew_TCP_Localhost(t *testing.T) {
	cfg := config.ListenConfig{
		TCPAddr: "127.0.0.1:0",
	}

	ln, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ln.Close()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Failed to connect to TCP listener: %v", err)
	}
	conn.Close()
}

func TestNew_TCP_BlocksRemote(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{
			name:    "localhost allowed",
			addr:    "127.0.0.1:0",
			wantErr: false,
		},
		{
			name:    "localhost by name allowed",
			addr:    "localhost:0",
			wantErr: false,
		},
		{
			name:    "::1 allowed",
			addr:    "[::1]:0",
			wantErr: false,
		},
		{
			name:    "empty host blocked",
			addr:    ":0",
			wantErr: true,
		},
		{
			name:    "0.0.0.0 blocked",
			addr:    "0.0.0.0:0",
			wantErr: true,
		},
		{
			name:    "any other address blocked",
			addr:    "192.168.1.1:0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.ListenConfig{
				TCPAddr:     tt.addr,
				AllowRemote: false,
			}

			ln, err := New(cfg)
			if tt.wantErr {
				if err == nil {
					ln.Close()
					t.Error("New() should have failed for remote address")
				}
			} else {
				if err != nil {
					t.Errorf("New() error = %v", err)
				} else {
					ln.Close()
				}
			}
		})
	}
}

func TestNew_TCP_AllowRemote(t *testing.T) {
	cfg := config.ListenConfig{
		TCPAddr:     "0.0.0.0:0",
		AllowRemote: true,
	}

	ln, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v, should be allowed with AllowRemote", err)
	}
	ln.Close()
}

func TestNew_UnixSocket_CreatesDirectory(t *testing.T) {
	// Use /tmp for shorter paths (macOS caps Unix socket paths at 104 chars).
	tmpDir, err := os.MkdirTemp("/tmp", "switchboard-test-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	socketPath := filepath.Join(tmpDir, "n", "s.sock")

	ln, err := New(config.ListenConfig{SocketPath: socketPath})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ln.Close()

	if _, err := os.Stat(filepath.Dir(socketPath)); err != nil {
		t.Errorf("Directory not created: %v", err)
	}
}

func TestNew_UnixSocket_RemovesExisting(t *testing.T) {
	tmpDir, err := os.MkdirTemp("/tmp", "switchboard-test-")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	socketPath := filepath.Join(tmpDir, "s.sock")

	// A leftover file at the socket path must not block startup.
	if err := os.WriteFile(socketPath, []byte("stale"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	ln, err := New(config.ListenConfig{SocketPath: socketPath})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ln.Close()

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to connect to socket: %v", err)
	}
	conn.Close()
}

func TestNew_TCPPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	socketPath := filepath.Join(tmpDir, "test.sock")

	cfg := config.ListenConfig{
		SocketPath: socketPath,
		TCPAddr:    "127.0.0.1:0",
	}

	ln, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ln.Close()

	if ln.Addr().Network() != "tcp" {
		t.Errorf("Network = %v, want tcp", ln.Addr().Network())
	}

	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Error("Socket file should not be created when TCP is configured")
	}
}

func TestNew_NothingConfigured(t *testing.T) {
	if _, err := New(config.ListenConfig{}); err == nil {
		t.Error("New() should fail when neither socket nor TCP address is set")
	}
}

func TestIsRemoteAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:8080", false},
		{"localhost:8080", false},
		{"[::1]:8080", false},

		{":8080", true},
		{"0.0.0.0:8080", true},
		{"::", true},
		{"192.168.1.1:8080", true},
		{"10.0.0.1:8080", true},
		{"example.com:8080", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got := isRemoteAddr(tt.addr)
			if got != tt.want {
				t.Errorf("isRemoteAddr(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestParseDaemonHost(t *testing.T) {
	tests := []struct {
		name       string
		host       string
		wantSocket string
		wantTCP    string
		wantErr    bool
	}{
		{
			name:       "empty string",
			host:       "",
			wantSocket: "",
			wantTCP:    "",
			wantErr:    false,
		},
		{
			name:       "unix socket",
			host:       "unix:///var/run/switchboardd.sock",
			wantSocket: "/var/run/switchboardd.sock",
			wantErr:    false,
		},
		{
			name:    "tcp",
			host:    "tcp://localhost:9090",
			wantTCP: "localhost:9090",
			wantErr: false,
		},
		{
			name:    "https",
			host:    "https://switchboard.internal:443",
			wantTCP: "switchboard.internal:443",
			wantErr: false,
		},
		{
			name:    "invalid scheme",
			host:    "invalid://something",
			wantErr: true,
		},
		{
			name:    "no scheme",
			host:    "localhost:9090",
			wantErr: true,
		},
		{
			name:    "http not supported",
			host:    "http://localhost:9090",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseDaemonHost(tt.host)

			if tt.wantErr {
				if err == nil {
					t.Error("ParseDaemonHost() should have failed")
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseDaemonHost() error = %v", err)
			}

			if tt.host == "" {
				if cfg != nil {
					t.Error("ParseDaemonHost(\"\") should return nil config")
				}
				return
			}

			if cfg.SocketPath != tt.wantSocket {
				t.Errorf("SocketPath = %v, want %v", cfg.SocketPath, tt.wantSocket)
			}
			if cfg.TCPAddr != tt.wantTCP {
				t.Errorf("TCPAddr = %v, want %v", cfg.TCPAddr, tt.wantTCP)
			}
		})
	}
}
