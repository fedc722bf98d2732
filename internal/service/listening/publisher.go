// internal/service/listening/publisher.go

package listening

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// DashboardBuilt is emitted each time a dashboard document is assembled
type DashboardBuilt struct {
	EventID       string    `json:"event_id"`
	Timestamp     time.Time `json:"timestamp"`
	DataSource    string    `json:"data_source"`
	Success       bool      `json:"success"`
	TotalPosts    int       `json:"total_posts"`
	DominantTopic string    `json:"dominant_topic"`
	PositiveRate  float64   `json:"positive_rate"`
	AIGenerated   bool      `json:"ai_generated"`
}

// Publisher pushes dashboard events onto the event bus.
// A publisher without a connection drops events silently.
type Publisher struct {
	eventBus    *nats.Conn
	eventsTopic string
}

// NewPublisher creates a new publisher. conn may be nil.
func NewPublisher(conn *nats.Conn, eventsTopic string) *Publisher {
	return &Publisher{
		eventBus:    conn,
		eventsTopic: eventsTopic,
	}
}

// Subject returns the subject dashboard events are published on
func (p *Publisher) Subject() string {
	return fmt.Sprintf("%s.dashboard.built", p.eventsTopic)
}

// PublishDashboardBuilt serializes and publishes one event
func (p *Publisher) PublishDashboardBuilt(ev DashboardBuilt) error {
	if p == nil || p.eventBus == nil {
		return nil
	}

	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	return p.eventBus.Publish(p.Subject(), data)
}

func encodeEvent(ev DashboardBuilt) ([]byte, error) {
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dashboard event: %w", err)
	}
	return data, nil
}
