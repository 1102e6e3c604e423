// Package remote provides a history backend whose address bar lives in a
// remote client connected over a WebSocket.
//
// The server sends commands:
//
//	{"op":"push","url":"/a"}
//	{"op":"replace","url":"/a"}
//	{"op":"go","n":-1}
//
// and the client reports location changes it made itself (back/forward, or
// its initial location right after connecting):
//
//	{"type":"popstate","url":"/a"}
//
// Only the most recent connection is served; a new client replaces the old.
package remote

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Command is a frame sent to the client.
type Command struct {
	Op  string `json:"op"`
	URL string `json:"url,omitempty"`
	N   int    `json:"n,omitempty"`
}

// Event is a frame received from the client.
type Event struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Command ops and event types.
const (
	OpPush    = "push"
	OpReplace = "replace"
	OpGo      = "go"

	EventPopState = "popstate"
)

// Config configures a Backend.
type Config struct {
	// Initial is the location before any client reports one.
	Initial string

	// ReadTimeout closes connections silent for longer. Zero disables it.
	ReadTimeout time.Duration

	// WriteTimeout bounds each command write.
	WriteTimeout time.Duration

	// CheckOrigin is passed to the upgrader. Nil allows same-origin only.
	CheckOrigin func(r *http.Request) bool

	// Logger receives connection errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// Backend is a history.Backend driven by a WebSocket client.
type Backend struct {
	upgrader     websocket.Upgrader
	logger       *slog.Logger
	readTimeout  time.Duration
	writeTimeout time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	location  string
	listeners map[int]func(string)
	nextID    int

	writeMu sync.Mutex
}

// New creates a Backend.
func New(cfg Config) *Backend {
	if cfg.Initial == "" {
		cfg.Initial = "/"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Backend{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		logger:       cfg.Logger.With("component", "remote-history"),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		location:     cfg.Initial,
		listeners:    make(map[int]func(string)),
	}
}

// Push implements history.Backend.
func (b *Backend) Push(url string) {
	b.setLocation(url)
	b.send(Command{Op: OpPush, URL: url})
}

// Replace implements history.Backend.
func (b *Backend) Replace(url string) {
	b.setLocation(url)
	b.send(Command{Op: OpReplace, URL: url})
}

// Go implements history.Backend. The client answers with a popstate event.
func (b *Backend) Go(n int) {
	if n == 0 {
		return
	}
	b.send(Command{Op: OpGo, N: n})
}

// Location implements history.Backend.
func (b *Backend) Location() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.location
}

// Listen implements history.Backend.
func (b *Backend) Listen(fn func(string)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Connected reports whether a client is attached.
func (b *Backend) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	b.mu.Lock()
	prev := b.conn
	b.conn = conn
	b.mu.Unlock()
	if prev != nil {
		b.closeConn(prev)
	}

	b.readLoop(conn)
}

// Close disconnects the current client.
func (b *Backend) Close() error {
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()
	if conn != nil {
		b.closeConn(conn)
	}
	return nil
}

func (b *Backend) readLoop(conn *websocket.Conn) {
	defer func() {
		b.mu.Lock()
		if b.conn == conn {
			b.conn = nil
		}
		b.mu.Unlock()
		conn.Close()
	}()

	for {
		if b.readTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(b.readTimeout))
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				b.logger.Error("read error", "error", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			b.logger.Error("event decode error", "error", err)
			continue
		}

		switch ev.Type {
		case EventPopState:
			if ev.URL == "" {
				b.logger.Warn("popstate without url")
				continue
			}
			b.setLocation(ev.URL)
			b.notify(ev.URL)
		default:
			b.logger.Warn("unknown event type", "type", ev.Type)
		}
	}
}

func (b *Backend) setLocation(url string) {
	b.mu.Lock()
	b.location = url
	b.mu.Unlock()
}

func (b *Backend) notify(url string) {
	b.mu.Lock()
	listeners := make([]func(string), 0, len(b.listeners))
	for id := 0; id < b.nextID; id++ {
		if fn, ok := b.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(url)
	}
}

func (b *Backend) send(cmd Command) {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		b.logger.Error("command encode error", "error", err)
		return
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(b.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		b.logger.Error("write error", "op", cmd.Op, "error", err)
	}
}

func (b *Backend) closeConn(conn *websocket.Conn) {
	b.writeMu.Lock()
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	b.writeMu.Unlock()
	conn.Close()
}
