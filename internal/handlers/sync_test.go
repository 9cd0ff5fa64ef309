package handlers

import (
	"net"
	"sync"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/video-analyzer/internal/playback"
	"github.com/codebuildervaibhav/video-analyzer/internal/session"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// replaceableManager hands out a Done channel that replace closes
type replaceableManager struct {
	fakeManager
	mu   sync.Mutex
	done chan struct{}
}

func newReplaceableManager() *replaceableManager {
	m := &replaceableManager{done: make(chan struct{})}
	m.snap = &session.Snapshot{ID: "s1", VideoID: "dQw4w9WgXcQ", Status: types.StatusReady, Transcript: testSegments}
	return m
}

func (m *replaceableManager) Handle() (session.Handle, error) {
	h, err := m.fakeManager.Handle()
	m.mu.Lock()
	h.Done = m.done
	m.mu.Unlock()
	return h, err
}

func (m *replaceableManager) replace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	close(m.done)
	m.done = make(chan struct{})
}

func startSyncServer(t *testing.T, m SessionManager) string {
	t.Helper()
	h := NewSyncHandler(m, playback.MinPollInterval, nil)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use("/ws", h.Upgrade)
	app.Get("/ws/sync", websocket.New(h.Handle))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })
	return "ws://" + ln.Addr().String() + "/ws/sync"
}

func dialSync(t *testing.T, url string) *fastws.Conn {
	t.Helper()
	conn, _, err := fastws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readUntil(t *testing.T, conn *fastws.Conn, typ string) map[string]interface{} {
	t.Helper()
	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("no %q message: %v", typ, err)
		}
		if msg["type"] == typ {
			return msg
		}
	}
}

func TestSyncHandleHelloAndSessionChanged(t *testing.T) {
	m := newReplaceableManager()
	conn := dialSync(t, startSyncServer(t, m))
	defer conn.Close()

	hello := readUntil(t, conn, "hello")
	if hello["session_id"] != "s1" || hello["video_id"] != "dQw4w9WgXcQ" {
		t.Errorf("hello = %v", hello)
	}
	if hello["interval_ms"] != float64(playback.MinPollInterval.Milliseconds()) {
		t.Errorf("interval_ms = %v", hello["interval_ms"])
	}

	if err := conn.WriteJSON(fiber.Map{"type": "seek", "timestamp": "0:02"}); err != nil {
		t.Fatal(err)
	}
	if msg := readUntil(t, conn, "seek"); msg["seconds"] != 2.0 {
		t.Errorf("seek = %v", msg)
	}

	m.replace()
	readUntil(t, conn, "session_changed")

	for {
		var msg map[string]interface{}
		err := conn.ReadJSON(&msg)
		if err == nil {
			continue
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			t.Error("socket still open after session_changed")
		}
		break
	}
}

func TestSyncHandleWithoutSession(t *testing.T) {
	conn := dialSync(t, startSyncServer(t, &fakeManager{}))
	defer conn.Close()

	msg := readUntil(t, conn, "error")
	if msg["error"] != session.ErrNoSession.Error() {
		t.Errorf("error = %v", msg)
	}
}

func TestSyncHandleTeardownWhileReplaced(t *testing.T) {
	m := newReplaceableManager()
	url := startSyncServer(t, m)

	for i := 0; i < 50; i++ {
		conn := dialSync(t, url)
		readUntil(t, conn, "hello")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.replace()
		}()
		go func() {
			defer wg.Done()
			conn.Close()
		}()
		wg.Wait()
	}

	// The server still serves new clients after the churn
	conn := dialSync(t, url)
	defer conn.Close()
	readUntil(t, conn, "hello")
}
