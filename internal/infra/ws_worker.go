package infra

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StreamHandler supplies the feed-specific half of a websocket stream:
// where to connect, what to send on connect, and how to consume frames.
type StreamHandler interface {
	Name() string
	URL() string
	OnConnect(ctx context.Context, conn *websocket.Conn) error
	OnMessage(ctx context.Context, msg []byte)
	OnPing(ctx context.Context, conn *websocket.Conn) error
}

// StreamWorker owns one websocket connection on behalf of a
// StreamHandler: it dials, reconnects with backoff, enforces a read
// deadline, drives the keepalive loop and serializes writes.
type StreamWorker struct {
	handler StreamHandler
	mu      sync.RWMutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	ReadTimeout  time.Duration
	PingInterval time.Duration
}

// NewStreamWorker wraps a handler with connection management.
func NewStreamWorker(handler StreamHandler) *StreamWorker {
	return &StreamWorker{
		handler:      handler,
		ReadTimeout:  60 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

// Start launches the connect-read loop.
func (w *StreamWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop tears the connection down and waits for the loop to exit.
func (w *StreamWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.dropConn()
	w.wg.Wait()
}

func (w *StreamWorker) run(ctx context.Context) {
	defer w.wg.Done()
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.dial(ctx); err != nil {
			delay := ReconnectDelay(attempt)
			slog.Warn("STREAM_RECONNECTING",
				"feed", w.handler.Name(), "error", err,
				"attempt", attempt, "delay", delay)
			attempt++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		attempt = 0
		w.readFrames(ctx)
	}
}

func (w *StreamWorker) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, w.handler.URL(), nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.handler.OnConnect(ctx, conn); err != nil {
		w.dropConn()
		return fmt.Errorf("subscribe failed: %w", err)
	}

	if w.PingInterval > 0 {
		go w.keepalive(ctx)
	}

	slog.Info("STREAM_CONNECTED", "feed", w.handler.Name())
	return nil
}

// readFrames pumps inbound frames to the handler until the connection
// breaks; the caller's loop then reconnects.
func (w *StreamWorker) readFrames(ctx context.Context) {
	for {
		w.mu.RLock()
		c := w.conn
		w.mu.RUnlock()
		if c == nil {
			return
		}

		c.SetReadDeadline(time.Now().Add(w.ReadTimeout))
		_, msg, err := c.ReadMessage()
		if err != nil {
			slog.Warn("STREAM_READ_FAILED", "feed", w.handler.Name(), "error", err)
			w.dropConn()
			return
		}

		w.handler.OnMessage(ctx, msg)
	}
}

func (w *StreamWorker) keepalive(ctx context.Context) {
	ticker := time.NewTicker(w.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mu.RLock()
			c := w.conn
			w.mu.RUnlock()
			if c == nil {
				return
			}
			if err := w.handler.OnPing(ctx, c); err != nil {
				slog.Warn("STREAM_PING_FAILED", "feed", w.handler.Name(), "error", err)
				w.dropConn()
				return
			}
		}
	}
}

// Write sends one frame, serialized across goroutines.
func (w *StreamWorker) Write(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.RLock()
	c := w.conn
	w.mu.RUnlock()

	if c == nil {
		return fmt.Errorf("stream not connected")
	}

	return c.WriteMessage(msgType, data)
}

func (w *StreamWorker) dropConn() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}
