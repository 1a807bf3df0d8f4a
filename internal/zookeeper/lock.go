package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/order_locks" // root node for all per-order locks
)

// OrderLock serializes mutating operations on a single order. Every
// read-modify-write on an order (recalculation, lifecycle transition,
// webhook settlement) must run inside Lock/Unlock for that order id.
type OrderLock struct {
	conn     *Conn
	path     string // lock path, e.g. /order_locks/<orderID>
	lockNode string // node created once the lock is held
}

// NewOrderLock creates a lock handle for one order id.
func NewOrderLock(conn *Conn, orderID string) (*OrderLock, error) {
	if err := ensureNode(conn, lockRoot); err != nil {
		return nil, err
	}
	lockPath := lockRoot + "/" + orderID
	if err := ensureNode(conn, lockPath); err != nil {
		return nil, err
	}
	return &OrderLock{conn: conn, path: lockPath}, nil
}

func ensureNode(conn *Conn, path string) error {
	exists, _, err := conn.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check node %s: %w", path, err)
	}
	if exists {
		return nil
	}
	if _, err := conn.Create(path, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
		return fmt.Errorf("failed to create node %s: %w", path, err)
	}
	return nil
}

// Lock blocks until the lock is acquired or the wait times out.
func (l *OrderLock) Lock() error {
	// Ephemeral sequential node; the smallest sequence number holds the lock.
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			return nil
		}

		// Watch the node immediately ahead of ours to avoid a thundering herd.
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			return errors.New("cannot find previous node, something is wrong")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		exists, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			if err == zk.ErrNoNode {
				continue
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}
		if !exists {
			continue
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(30 * time.Second):
			return errors.New("timeout waiting for order lock")
		}
	}
}

// Unlock releases the lock.
func (l *OrderLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}
