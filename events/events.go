// Package events publishes progression events (areas generated, nodes and
// levels completed) to an external notification sink.
package events

import (
	"context"
	"time"
)

// Event types double as routing keys.
const (
	TypeAreaGenerated      = "area.generated"
	TypeNodeCompleted      = "node.completed"
	TypeAreaCompleted      = "area.completed"
	TypeWorldPathGenerated = "world_path.generated"
	TypeLevelCompleted     = "level.completed"
	TypeWorldCompleted     = "world.completed"
)

// Event is the JSON body sent for every progression change.
type Event struct {
	Type       string         `json:"type"`
	OwnerID    string         `json:"owner_id"`
	AreaID     string         `json:"area_id,omitempty"`
	PathID     string         `json:"path_id,omitempty"`
	NodeKey    string         `json:"node_key,omitempty"`
	LevelID    string         `json:"level_id,omitempty"`
	NodeType   string         `json:"node_type,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NopPublisher) Close() error                                 { return nil }
