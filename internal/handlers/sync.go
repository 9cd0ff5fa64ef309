package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
	"github.com/codebuildervaibhav/video-analyzer/internal/playback"
	"github.com/codebuildervaibhav/video-analyzer/internal/session"
)

// SyncHandler keeps a browser player in step with the session transcript.
//
// The client reports its position and requests seeks:
//
//	{"type":"position","seconds":12.5}
//	{"type":"seek","timestamp":"1:05"}
//	{"type":"seek_segment","index":4}
//
// The server answers with {"type":"active","index":n,"scroll":bool} whenever
// the active segment changes and {"type":"seek","seconds":x} when the player
// must move. {"type":"session_changed"} is sent before the socket is closed
// because the session was replaced or discarded.
type SyncHandler struct {
	manager  SessionManager
	interval time.Duration
	logger   logger.Logger
}

// NewSyncHandler creates the handler
func NewSyncHandler(manager SessionManager, interval time.Duration, log logger.Logger) *SyncHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SyncHandler{
		manager:  manager,
		interval: interval,
		logger:   log,
	}
}

// Upgrade rejects plain HTTP requests to the sync endpoint
func (h *SyncHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

type clientMessage struct {
	Type      string  `json:"type"`
	Seconds   float64 `json:"seconds"`
	Timestamp string  `json:"timestamp"`
	Index     int     `json:"index"`
}

// Handle serves one websocket connection
func (h *SyncHandler) Handle(conn *websocket.Conn) {
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handle, err := h.manager.Handle()
	if err != nil {
		send(fiber.Map{"type": "error", "error": err.Error()})
		return
	}

	follower := newSyncFollower(handle, h.interval, send)
	if err := send(fiber.Map{
		"type":        "hello",
		"session_id":  handle.ID,
		"video_id":    handle.VideoID,
		"interval_ms": follower.poller.Interval().Milliseconds(),
	}); err != nil {
		return
	}

	follower.poller.Start(ctx)
	defer follower.poller.Stop()

	// The watcher may only touch conn while Handle is running; the
	// connection is recycled once Handle returns.
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-handle.Done:
			send(fiber.Map{"type": "session_changed"})
			conn.Close()
		case <-ctx.Done():
		}
	}()
	defer func() {
		cancel()
		<-watcherDone
	}()

	h.logger.Debug(ctx, "Sync client attached to session %s", handle.ID)
	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			h.logger.Debug(ctx, "Sync client for session %s left: %v", handle.ID, err)
			return
		}
		follower.handle(msg)
	}
}

// remotePlayer mirrors the position last reported by the browser.
// Seeks are sent back to the browser and applied locally right away.
type remotePlayer struct {
	mu       sync.Mutex
	position float64
	send     func(v interface{}) error
}

func (p *remotePlayer) CurrentPosition() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *remotePlayer) SeekTo(seconds float64) {
	p.report(seconds)
	p.send(fiber.Map{"type": "seek", "seconds": seconds})
}

func (p *remotePlayer) report(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	p.mu.Lock()
	p.position = seconds
	p.mu.Unlock()
}

// syncFollower binds a poller and scroll follower to one connection
type syncFollower struct {
	track  *playback.Track
	player *remotePlayer
	scroll *playback.ScrollFollower
	poller *playback.Poller
	send   func(v interface{}) error
}

func newSyncFollower(handle session.Handle, interval time.Duration, send func(v interface{}) error) *syncFollower {
	f := &syncFollower{
		track:  handle.Track,
		player: &remotePlayer{send: send},
		scroll: &playback.ScrollFollower{},
		send:   send,
	}
	f.poller = playback.NewPoller(f.player, f.track, interval, f.activeChanged)
	return f
}

func (f *syncFollower) activeChanged(idx int) {
	f.send(fiber.Map{
		"type":   "active",
		"index":  idx,
		"scroll": f.scroll.Observe(idx),
	})
}

func (f *syncFollower) handle(msg clientMessage) {
	switch msg.Type {
	case "position":
		f.player.report(msg.Seconds)
	case "seek":
		playback.SeekToTimestamp(f.player, msg.Timestamp)
	case "seek_segment":
		if !playback.SeekToSegment(f.player, f.track.Snapshot(), msg.Index) {
			f.send(fiber.Map{"type": "error", "error": "segment index out of range"})
		}
	default:
		f.send(fiber.Map{"type": "error", "error": "unknown message type: " + msg.Type})
	}
}
