// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ecodash/internal/logging"
)

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Interval between dashboard pushes
	PushInterval time.Duration
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
		PushInterval:   30 * time.Second,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// dashboardClient is one live-feed connection. Every push assembles a
// fresh dashboard for this connection only.
type dashboardClient struct {
	conn    *websocket.Conn
	builder DashboardBuilder
	config  WebSocketConfig
	logger  logging.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// DashboardWebSocketHandler streams a dashboard document on connect and
// then once per push interval until the peer disconnects
func DashboardWebSocketHandler(builder DashboardBuilder, config WebSocketConfig, logger logging.Logger) http.HandlerFunc {
	if config.PushInterval <= 0 {
		config.PushInterval = DefaultWebSocketConfig().PushInterval
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Warn("Failed to upgrade to WebSocket")
			return
		}

		client := &dashboardClient{
			conn:    conn,
			builder: builder,
			config:  config,
			logger:  logger.WithField("remote", r.RemoteAddr),
			done:    make(chan struct{}),
		}

		client.logger.Info("Dashboard feed connected")

		go client.readPump()
		client.writePump()
	}
}

// readPump drains control frames and detects disconnects; client messages are ignored
func (c *dashboardClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("WebSocket error")
			}
			return
		}
	}
}

// writePump pushes dashboards and pings until the connection closes
func (c *dashboardClient) writePump() {
	push := time.NewTicker(c.config.PushInterval)
	ping := time.NewTicker(c.config.PingPeriod)
	defer func() {
		push.Stop()
		ping.Stop()
		c.closeConnection()
	}()

	if err := c.pushDashboard(); err != nil {
		return
	}

	for {
		select {
		case <-c.done:
			return

		case <-push.C:
			if err := c.pushDashboard(); err != nil {
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *dashboardClient) pushDashboard() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	resp := c.builder.Build(ctx)

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
	if err := c.conn.WriteJSON(resp); err != nil {
		c.logger.WithError(err).Debug("Failed to push dashboard")
		return err
	}
	return nil
}

// closeConnection closes the WebSocket connection once
func (c *dashboardClient) closeConnection() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
		c.logger.Info("Dashboard feed disconnected")
	})
}
