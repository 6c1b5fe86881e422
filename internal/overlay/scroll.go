package overlay

import (
	"context"
	"sync"
)

// DefaultScrollKey is the storage key used when none is configured.
const DefaultScrollKey = "overlay:scroll"

// Viewport is the scrollable page underneath the overlay.
type Viewport interface {
	ScrollY() int
	ScrollTo(y int)
}

// ScrollStore holds a captured scroll offset until the overlay closes.
type ScrollStore interface {
	Save(ctx context.Context, key string, offset int) error
	// Take returns and removes the offset stored under key.
	Take(ctx context.Context, key string) (offset int, ok bool, err error)
}

// MemoryViewport is a Viewport that only tracks an offset.
type MemoryViewport struct {
	mu sync.Mutex
	y  int
}

func NewMemoryViewport(y int) *MemoryViewport {
	return &MemoryViewport{y: y}
}

func (v *MemoryViewport) ScrollY() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.y
}

func (v *MemoryViewport) ScrollTo(y int) {
	if y < 0 {
		y = 0
	}
	v.mu.Lock()
	v.y = y
	v.mu.Unlock()
}

// MemoryScrollStore keeps offsets for the lifetime of the process.
type MemoryScrollStore struct {
	mu      sync.Mutex
	offsets map[string]int
}

func NewMemoryScrollStore() *MemoryScrollStore {
	return &MemoryScrollStore{offsets: make(map[string]int)}
}

func (s *MemoryScrollStore) Save(_ context.Context, key string, offset int) error {
	s.mu.Lock()
	s.offsets[key] = offset
	s.mu.Unlock()
	return nil
}

func (s *MemoryScrollStore) Take(_ context.Context, key string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offset, ok := s.offsets[key]
	delete(s.offsets, key)
	return offset, ok, nil
}
