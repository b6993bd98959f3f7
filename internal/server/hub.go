package server

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// hub fans snapshot payloads out to connected websocket subscribers.
type hub struct {
	log *zap.Logger

	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func newHub(log *zap.Logger) *hub {
	return &hub{log: log, subs: make(map[chan []byte]struct{})}
}

func (h *hub) subscribe() chan []byte {
	ch := make(chan []byte, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// broadcast delivers payload to every subscriber. A subscriber that has not
// drained its previous payload is skipped rather than blocked on; only the
// latest snapshot matters.
func (h *hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (h *hub) serve(ctx context.Context, conn *websocket.Conn, ch chan []byte) {
	defer h.unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-ch:
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				h.log.Debug("ws write failed", zap.Error(err))
				return
			}
		}
	}
}
