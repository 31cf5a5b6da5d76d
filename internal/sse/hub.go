package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

const (
	EventMessage = "message"

	DefaultHeartbeat = 15 * time.Second
)

var (
	ErrNoSubscribers = errors.New("sse: no subscribers on channel")
	ErrClientClosed  = errors.New("sse: client closed")
)

// Message is written as "event: <Event>" followed by Data encoded as JSON.
type Message struct {
	Channel string
	Event   string
	Data    any
}

type Client struct {
	ID       uuid.UUID
	Channel  string
	Outbound chan Message
	done     chan struct{}
	once     sync.Once
	Logger   *logger.Logger
}

// Hub fans messages out to the clients subscribed to a channel. A generation
// run publishes to its own channel, so a stream normally has one client.
type Hub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*Client]bool
	Heartbeat     time.Duration
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		logger:        log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*Client]bool),
		Heartbeat:     DefaultHeartbeat,
	}
}

// NewClient subscribes a fresh client to channel.
func (hub *Hub) NewClient(channel string) *Client {
	channel = strings.TrimSpace(channel)
	c := &Client{
		ID:       uuid.New(),
		Channel:  channel,
		Outbound: make(chan Message, 10),
		done:     make(chan struct{}),
	}
	c.Logger = hub.logger.With("clientID", c.ID, "channel", channel)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	clients, ok := hub.subscriptions[channel]
	if !ok {
		clients = make(map[*Client]bool)
		hub.subscriptions[channel] = clients
	}
	clients[c] = true
	c.Logger.Debug("SSE client subscribed")
	return c
}

// Publish delivers msg to every client on msg.Channel, waiting for buffer room.
// It fails when the channel has no clients, a client is closed, or ctx ends.
func (hub *Hub) Publish(ctx context.Context, msg Message) error {
	if msg.Event == "" {
		msg.Event = EventMessage
	}
	hub.mu.RLock()
	clients := make([]*Client, 0, len(hub.subscriptions[msg.Channel]))
	for c := range hub.subscriptions[msg.Channel] {
		clients = append(clients, c)
	}
	hub.mu.RUnlock()
	if len(clients) == 0 {
		return ErrNoSubscribers
	}
	for _, c := range clients {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return ErrClientClosed
		case c.Outbound <- msg:
		}
	}
	return nil
}

// Close unsubscribes the client and ends its stream once the buffered
// messages are written.
func (hub *Hub) Close(c *Client) {
	c.once.Do(func() {
		hub.mu.Lock()
		if subMap, ok := hub.subscriptions[c.Channel]; ok {
			delete(subMap, c)
			if len(subMap) == 0 {
				delete(hub.subscriptions, c.Channel)
			}
		}
		hub.mu.Unlock()
		close(c.done)
		c.Logger.Debug("SSE client closed")
	})
}

// ServeHTTP streams the client's messages until it is closed or the request
// context ends.
func (hub *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, c *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	flusher.Flush()

	heartbeat := time.NewTicker(hub.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Logger.Debug("SSE client context done", "err", ctx.Err())
			return
		case <-c.done:
			for {
				select {
				case msg := <-c.Outbound:
					hub.write(w, c, msg)
				default:
					flusher.Flush()
					return
				}
			}
		case <-heartbeat.C:
			const pingChunkedSize = 8*1024 - len(": ping \n\n")
			fmt.Fprint(w, ": ping "+strings.Repeat("#", pingChunkedSize)+"\n\n")
			flusher.Flush()
		case msg := <-c.Outbound:
			hub.write(w, c, msg)
			flusher.Flush()
		}
	}
}

func (hub *Hub) write(w http.ResponseWriter, c *Client, msg Message) {
	jsonBytes, err := json.Marshal(msg.Data)
	if err != nil {
		c.Logger.Warn("Failed to marshal SSE message", "error", err)
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", msg.Event)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", jsonBytes)
}
