package collab

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
)

// RedisMirror publishes room events to a Redis channel per room so external
// observers (audit, dashboards) can watch sessions. It never subscribes:
// room state stays in-process.
type RedisMirror struct {
	client *redis.Client
}

func NewRedisMirror(addr, password string) *RedisMirror {
	return &RedisMirror{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
	}
}

func (m *RedisMirror) Publish(roomID, event string, payload any) {
	body, err := json.Marshal(map[string]any{"event": event, "data": payload})
	if err != nil {
		log.Printf("mirror: marshal %s event: %v", event, err)
		return
	}
	if err := m.client.Publish(context.Background(), "collab:"+roomID, body).Err(); err != nil {
		log.Printf("mirror: publish to %s: %v", roomID, err)
	}
}
