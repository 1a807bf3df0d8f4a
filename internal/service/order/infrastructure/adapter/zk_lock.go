package adapter

import (
	"printexpress/internal/service/order/port"
	"printexpress/internal/zookeeper"
)

// ZkLockFactory hands out zookeeper-backed per-order locks.
type ZkLockFactory struct {
	conn *zookeeper.Conn
}

// NewZkLockFactory creates the factory.
func NewZkLockFactory(conn *zookeeper.Conn) *ZkLockFactory {
	return &ZkLockFactory{conn: conn}
}

// NewLock creates a lock handle for one order id.
func (f *ZkLockFactory) NewLock(orderID string) (port.Lock, error) {
	return zookeeper.NewOrderLock(f.conn, orderID)
}
