package ipc

import (
	"fmt"
	"net"
	"time"
)

const dialTimeout = 5 * time.Second

// Send dials the socket at path, sends req and waits for the reply.
func Send(path string, req Request) (Reply, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return Reply{}, fmt.Errorf("connect to %s: %w", path, err)
	}
	defer conn.Close()

	if err := WriteMessage(conn, req); err != nil {
		return Reply{}, fmt.Errorf("send request: %w", err)
	}
	var reply Reply
	if err := ReadMessage(conn, &reply); err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}
