package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/pushgrid/internal/core/events/bus"
	"github.com/zeusync/pushgrid/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const (
	writeTimeout = 5 * time.Second
	// sendBuffer frames may queue per client before it is dropped as too slow.
	sendBuffer = 64
)

// Message is the JSON frame sent to feed clients for every bus event.
type Message struct {
	Type   string    `json:"type"`
	Source string    `json:"source"`
	Time   time.Time `json:"time"`
	Data   any       `json:"data"`
}

type client struct {
	conn   *websocket.Conn
	remote string
	// room limits delivery to one event source; empty receives everything.
	room string
	send chan []byte
}

// Feed streams bus events to websocket clients. Broadcast never waits on a
// connection: every client has its own queue drained by a writer goroutine.
type Feed struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  log.Log
}

func NewFeed(logger log.Log) *Feed {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Feed{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Attach forwards every event published on b to the feed.
func (f *Feed) Attach(b bus.EventBus) (bus.Subscription, error) {
	return b.Subscribe(bus.Wildcard, func(e bus.Event) error {
		f.Broadcast(Message{
			Type:   e.Type(),
			Source: e.Source(),
			Time:   e.Timestamp(),
			Data:   e.Data(),
		})
		return nil
	})
}

// Broadcast queues msg for every matching client. Clients whose queue is full
// are disconnected.
func (f *Feed) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		f.logger.Error("encode feed message", log.String("type", msg.Type), log.Error(err))
		return
	}

	var slow []*client
	f.mu.RLock()
	for c := range f.clients {
		if c.room != "" && c.room != msg.Source {
			continue
		}
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	f.mu.RUnlock()

	for _, c := range slow {
		f.logger.Warn("dropping slow feed client", log.String("remote", c.remote))
		f.drop(c)
	}
}

func (f *Feed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects every client.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		close(c.send)
	}
	f.clients = make(map[*client]struct{})
}

func (f *Feed) add(c *client) {
	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()
}

// drop unregisters c and closes its queue, which stops its writer.
func (f *Feed) drop(c *client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
}

func (f *Feed) writePump(c *client) {
	defer c.conn.Close()
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			f.logger.Debug("feed write failed", log.String("remote", c.remote), log.Error(err))
			f.drop(c)
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
		time.Now().Add(time.Second))
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects. The optional "scenario" query parameter selects one source.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Debug("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		conn:   conn,
		remote: conn.RemoteAddr().String(),
		room:   r.URL.Query().Get("scenario"),
		send:   make(chan []byte, sendBuffer),
	}
	f.add(c)
	go f.writePump(c)
	f.logger.Debug("feed client connected",
		log.String("remote", c.remote),
		log.String("scenario", c.room),
	)

	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}
	f.drop(c)
}
