package remote

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/matcher"
	"github.com/vango-dev/navcore/pkg/route"
)

func startServer(t *testing.T, b *Backend) string {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, b *Backend) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	eventually(t, b.Connected)
	return conn
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readCommand(t *testing.T, conn *websocket.Conn) Command {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var cmd Command
	if err := conn.ReadJSON(&cmd); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return cmd
}

func TestBackendWithoutClient(t *testing.T) {
	b := New(Config{})
	if b.Location() != "/" {
		t.Errorf("Location() = %q, want /", b.Location())
	}
	b.Push("/a")
	b.Go(-1)
	if b.Location() != "/a" {
		t.Errorf("Location() = %q, want /a", b.Location())
	}
	if b.Connected() {
		t.Error("Connected() should be false")
	}
}

func TestBackendSendsCommands(t *testing.T) {
	b := New(Config{Initial: "/start"})
	conn := dial(t, startServer(t, b), b)

	b.Push("/a")
	if cmd := readCommand(t, conn); cmd.Op != OpPush || cmd.URL != "/a" {
		t.Errorf("command = %+v, want push /a", cmd)
	}
	b.Replace("/b")
	if cmd := readCommand(t, conn); cmd.Op != OpReplace || cmd.URL != "/b" {
		t.Errorf("command = %+v, want replace /b", cmd)
	}
	b.Go(-2)
	if cmd := readCommand(t, conn); cmd.Op != OpGo || cmd.N != -2 {
		t.Errorf("command = %+v, want go -2", cmd)
	}
	if b.Location() != "/b" {
		t.Errorf("Location() = %q, want /b", b.Location())
	}
}

func TestBackendPopState(t *testing.T) {
	b := New(Config{})
	got := make(chan string, 1)
	stop := b.Listen(func(url string) { got <- url })
	defer stop()

	conn := dial(t, startServer(t, b), b)
	if err := conn.WriteJSON(Event{Type: EventPopState, URL: "/back"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	select {
	case url := <-got:
		if url != "/back" {
			t.Errorf("listener got %q, want /back", url)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener not called")
	}
	if b.Location() != "/back" {
		t.Errorf("Location() = %q, want /back", b.Location())
	}
}

func TestBackendLatestConnectionWins(t *testing.T) {
	b := New(Config{})
	url := startServer(t, b)
	first := dial(t, url, b)

	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer second.Close()

	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("first connection read error = %v, want normal closure", err)
	}

	b.Push("/x")
	if cmd := readCommand(t, second); cmd.URL != "/x" {
		t.Errorf("second connection got %+v, want push /x", cmd)
	}
}

func TestBackendDrivesHistory(t *testing.T) {
	m := matcher.MustNew([]matcher.RouteConfig{
		{Path: "/", Component: "Home"},
		{Path: "/docs", Component: "Docs"},
		{Path: "/blog", Component: "Blog"},
	})
	b := New(Config{})
	h := history.New(m, b)
	defer h.Close()
	h.Setup(nil, nil)

	conn := dial(t, startServer(t, b), b)

	h.Push(route.Path("/docs"), nil, nil)
	if cmd := readCommand(t, conn); cmd.Op != OpPush || cmd.URL != "/docs" {
		t.Fatalf("command = %+v, want push /docs", cmd)
	}

	if err := conn.WriteJSON(Event{Type: EventPopState, URL: "/blog"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	eventually(t, func() bool { return h.Current().Path == "/blog" })
}
