package announce

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// subscriberBuffer is the number of pending announcements a slow subscriber
// may queue before new ones are dropped for it.
const subscriberBuffer = 16

// Feed broadcasts newly created announcements to websocket subscribers.
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subscribers: make(map[chan []byte]struct{})}
}

// Publish fans an announcement out to all subscribers. Slow subscribers miss
// messages rather than block the publisher.
func (f *Feed) Publish(a Announcement) {
	data, err := json.Marshal(a)
	if err != nil {
		slog.Error("marshal announcement for feed", "error", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- data:
		default:
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (f *Feed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

func (f *Feed) subscribe() chan []byte {
	ch := make(chan []byte, subscriberBuffer)
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *Feed) unsubscribe(ch chan []byte) {
	f.mu.Lock()
	delete(f.subscribers, ch)
	f.mu.Unlock()
}

// ServeHTTP upgrades the request to a websocket and streams announcements
// until the client disconnects.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Debug("feed accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ch := f.subscribe()
	defer f.unsubscribe(ch)

	// CloseRead returns a context that ends when the client closes the
	// connection; we never expect inbound messages.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case data := <-ch:
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}

// Stream delivers announcements to fn until ctx is cancelled. It exists for
// callers that want feed semantics without a websocket, tests included.
func (f *Feed) Stream(ctx context.Context, fn func(data []byte)) {
	ch := f.subscribe()
	defer f.unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-ch:
			fn(data)
		}
	}
}
