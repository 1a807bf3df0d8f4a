package zookeeper

import (
	"time"

	"github.com/go-zookeeper/zk"
)

// Conn is a thin wrapper over a zk session so callers don't import the
// driver directly.
type Conn struct {
	*zk.Conn
}

// Connect opens a zk session against the given ensemble.
func Connect(servers []string, sessionTimeout time.Duration) (*Conn, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn}, nil
}
