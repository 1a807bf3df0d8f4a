package push

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"printexpress/internal/pkg/redis"
)

// sessionTTL caps how long a user→node mapping survives without the
// connection re-registering.
const sessionTTL = 2 * time.Hour

// SessionManager records which gateway node holds each user's websocket, so
// a router can address pushes in a multi-node deployment.
type SessionManager struct {
	client *redis.Client
}

// NewSessionManager creates the manager.
func NewSessionManager(client *redis.Client) *SessionManager {
	return &SessionManager{client: client}
}

func sessionKey(userID string) string { return "push:session:" + userID }

// SetUserGateway maps a user to this node.
func (m *SessionManager) SetUserGateway(ctx context.Context, userID, nodeID string) error {
	return m.client.GetClient().Set(ctx, sessionKey(userID), nodeID, sessionTTL).Err()
}

// GetUserGateway returns the node currently holding the user's connection,
// or empty when the user is offline.
func (m *SessionManager) GetUserGateway(ctx context.Context, userID string) (string, error) {
	node, err := m.client.GetClient().Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return node, nil
}

// ClearUserGateway drops the mapping after a disconnect.
func (m *SessionManager) ClearUserGateway(ctx context.Context, userID string) error {
	return m.client.Del(ctx, sessionKey(userID))
}
