package overlay

import (
	"context"
	"sync"
)

// KeyEscape is the key name that dismisses an open overlay.
const KeyEscape = "Escape"

// KeySource delivers key presses to attached listeners.
type KeySource interface {
	OnKey(fn func(key string)) (detach func())
}

// KeyBus is an in-process KeySource.
type KeyBus struct {
	mu        sync.Mutex
	listeners map[uint64]func(string)
	nextID    uint64
}

func NewKeyBus() *KeyBus {
	return &KeyBus{listeners: make(map[uint64]func(string))}
}

func (b *KeyBus) OnKey(fn func(key string)) (detach func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Press delivers key to every listener attached at the time of the call.
func (b *KeyBus) Press(key string) {
	b.mu.Lock()
	fns := make([]func(string), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}

// Listeners returns the number of attached listeners.
func (b *KeyBus) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Dismisser closes the overlay on Escape or a backdrop click. Its key
// listener is attached only while an overlay is open.
type Dismisser struct {
	ctrl *Controller
	keys KeySource

	mu          sync.Mutex
	generation  uint64
	stopped     bool
	detach      func()
	unsubscribe func()
}

func NewDismisser(ctrl *Controller, keys KeySource) *Dismisser {
	d := &Dismisser{ctrl: ctrl, keys: keys}
	d.unsubscribe = ctrl.Subscribe(d.apply)
	d.apply(ctrl.State())
	return d
}

// Backdrop handles a click on target while backdrop is the overlay's
// backdrop element. Clicks inside the overlay content are ignored. It
// reports whether the overlay was closed.
func (d *Dismisser) Backdrop(ctx context.Context, target, backdrop string) bool {
	if target != backdrop || !d.ctrl.State().IsOpen() {
		return false
	}
	d.ctrl.Close(ctx)
	return true
}

// Stop detaches every listener.
func (d *Dismisser) Stop() {
	d.unsubscribe()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.detach != nil {
		d.detach()
		d.detach = nil
	}
}

func (d *Dismisser) apply(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || s.Generation < d.generation {
		return
	}
	d.generation = s.Generation

	switch {
	case s.IsOpen() && d.detach == nil:
		d.detach = d.keys.OnKey(d.onKey)
	case !s.IsOpen() && d.detach != nil:
		d.detach()
		d.detach = nil
	}
}

func (d *Dismisser) onKey(key string) {
	if key == KeyEscape {
		d.ctrl.Close(context.Background())
	}
}
