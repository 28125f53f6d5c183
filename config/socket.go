package config

import (
	"errors"
	"os"
)

// ResolveSocket picks the IPC socket path: flag, then the config's socket,
// then $I3SOCK or $SWAYSOCK with ".istat" appended. The result is stored in
// c.Socket.
func (c *Config) ResolveSocket(flag string) (string, error) {
	path := flag
	if path == "" {
		path = c.Socket
	}
	if path == "" {
		path = DefaultSocket()
	}
	if path == "" {
		return "", errors.New("no socket path: pass --socket, set socket in the config, or run under i3 or sway")
	}
	c.Socket = path
	return path, nil
}

// DefaultSocket derives the socket path from the window manager's socket.
func DefaultSocket() string {
	for _, env := range []string{"I3SOCK", "SWAYSOCK"} {
		if v := os.Getenv(env); v != "" {
			return v + ".istat"
		}
	}
	return ""
}
