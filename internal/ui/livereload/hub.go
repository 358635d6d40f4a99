// Package livereload refreshes open pages when the static assets they use
// change on disk. It is only wired up in dev builds.
package livereload

import (
	"net/http"
	"sync"

	"github.com/starfederation/datastar-go/datastar"
)

const reloadScript = "window.location.reload()"

// Hub fans change pings out to every connected page.
type Hub struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]struct{}
	first     sync.Once
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[chan struct{}]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// once the listener is done.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.listeners[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Listeners returns the number of subscribed pages.
func (h *Hub) Listeners() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Broadcast pings every listener. A listener with a pending ping is skipped.
func (h *Hub) Broadcast() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Handler streams a reload script whenever the hub broadcasts. The first
// page to connect after the server starts is reloaded immediately, which
// picks up a rebuilt binary.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		h.first.Do(func() { _ = sse.ExecuteScript(reloadScript) })

		ch, cancel := h.Subscribe()
		defer cancel()

		for {
			select {
			case <-ch:
				if err := sse.ExecuteScript(reloadScript); err != nil {
					return
				}
			case <-r.Context().Done():
				return
			}
		}
	}
}

// TriggerHandler broadcasts a reload, for build tools that rebuild assets.
func (h *Hub) TriggerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		h.Broadcast()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
