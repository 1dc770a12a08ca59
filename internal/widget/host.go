package widget

import (
	"context"
	"errors"
	"sync"

	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
)

var ErrNoScript = errors.New("no widget script at mount point")

type injected struct {
	scriptURL string
	callbacks port.WidgetCallbacks
}

// MemoryHost keeps injected widget scripts in memory. The storefront page
// relays the widget's callbacks to the backend, which invokes them through
// the host.
type MemoryHost struct {
	mu      sync.RWMutex
	scripts map[string]injected
}

func NewMemoryHost() *MemoryHost {
	return &MemoryHost{scripts: make(map[string]injected)}
}

func (h *MemoryHost) Inject(ctx context.Context, mountPoint, scriptURL string, callbacks port.WidgetCallbacks) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if mountPoint == "" {
		return errors.New("mountPoint is empty")
	}
	if scriptURL == "" {
		return errors.New("scriptURL is empty")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.scripts[mountPoint] = injected{scriptURL: scriptURL, callbacks: callbacks}
	return nil
}

func (h *MemoryHost) Remove(mountPoint string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.scripts, mountPoint)
}

func (h *MemoryHost) ScriptURL(mountPoint string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.scripts[mountPoint]
	return s.scriptURL, ok
}

func (h *MemoryHost) Callbacks(mountPoint string) (port.WidgetCallbacks, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.scripts[mountPoint]
	if !ok {
		return port.WidgetCallbacks{}, ErrNoScript
	}
	return s.callbacks, nil
}
