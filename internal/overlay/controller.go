package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// Option configures a Controller.
type Option func(*Controller)

// WithScrollStore sets where the pre-open scroll offset is kept.
func WithScrollStore(s ScrollStore) Option {
	return func(c *Controller) { c.scroll = s }
}

// WithScrollKey sets the key the scroll offset is stored under.
func WithScrollKey(key string) Option {
	return func(c *Controller) { c.scrollKey = key }
}

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller is the single source of truth for which overlay is visible.
// State changes are written to the Navigator with Replace, and navigator
// changes made elsewhere are derived back into state.
type Controller struct {
	nav       Navigator
	viewport  Viewport
	scroll    ScrollStore
	scrollKey string
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	subs    map[uint64]func(State)
	nextSub uint64
	cancel  func()

	// scrollDone is closed when the most recent scroll store operation has
	// finished. Each operation waits for its predecessor, so captures and
	// restores reach the store in transition order without holding mu.
	scrollDone chan struct{}
}

// NewController derives the initial state from the navigator's location and
// starts following its changes. Call Stop to detach.
func NewController(nav Navigator, viewport Viewport, opts ...Option) *Controller {
	c := &Controller{
		nav:       nav,
		viewport:  viewport,
		scroll:    NewMemoryScrollStore(),
		scrollKey: DefaultScrollKey,
		logger:    logger.Discard(),
		subs:      make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.state = Derive(nav.Location().Query())
	c.cancel = nav.Listen(c.sync)
	return c
}

// Open shows the overlay of the given kind. A missing target for a kind that
// needs one is accepted; consumers render it as an error. Opening while
// another overlay is visible supersedes it and keeps the original scroll
// anchor.
func (c *Controller) Open(ctx context.Context, kind Kind, targetID string) (State, error) {
	k, ok := ParseKind(string(kind))
	if !ok || k == None {
		return c.State(), apperrors.InvalidInput(fmt.Sprintf("unknown overlay kind %q", kind))
	}
	next := State{Kind: k}
	if k.RequiresTarget() {
		next.TargetID = targetID
	}
	s, _ := c.transition(ctx, next, originCall, nil)
	return s, nil
}

// Close hides the overlay and restores the scroll offset captured when it
// opened. Closing while closed does nothing.
func (c *Controller) Close(ctx context.Context) State {
	s, _ := c.transition(ctx, State{}, originCall, nil)
	return s
}

// CloseIf closes the overlay only while generation is still current. It
// reports whether the overlay was closed.
func (c *Controller) CloseIf(ctx context.Context, generation uint64) bool {
	_, closed := c.transition(ctx, State{}, originCall, func(cur State) bool {
		return cur.Generation == generation
	})
	return closed
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsCurrent reports whether generation is the latest one.
func (c *Controller) IsCurrent(generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Generation == generation
}

// Subscribe registers fn for every transition. Notifications are delivered
// outside the controller's lock, so concurrent transitions may arrive out of
// order; compare Generation to discard older ones.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Stop detaches the controller from its navigator.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Controller) sync(u *url.URL) {
	c.transition(context.Background(), Derive(u.Query()), originNavigation, nil)
}

// transition moves to next unless it equals the current state or guard
// rejects the current state. It reports whether a transition happened.
func (c *Controller) transition(ctx context.Context, next State, origin string, guard func(State) bool) (State, bool) {
	c.mu.Lock()
	prev := c.state
	if (guard != nil && !guard(prev)) || prev.Same(next) {
		c.mu.Unlock()
		return prev, false
	}

	next.Generation = prev.Generation + 1
	c.state = next

	capture := !prev.IsOpen() && next.IsOpen()
	restore := prev.IsOpen() && !next.IsOpen()
	var (
		offset   int
		waitPrev chan struct{}
		scrollOp chan struct{}
	)
	if capture {
		offset = c.viewport.ScrollY()
	}
	if capture || restore {
		waitPrev = c.scrollDone
		scrollOp = make(chan struct{})
		c.scrollDone = scrollOp
	}
	if origin == originCall {
		c.nav.Replace(WithState(c.nav.Location(), next))
	}

	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	if scrollOp != nil {
		if waitPrev != nil {
			<-waitPrev
		}
		switch {
		case capture:
			c.capture(ctx, offset)
		case restore:
			offset, restore = c.take(ctx)
		}
		close(scrollOp)
	}

	transitionsTotal.WithLabelValues(next.Kind.String(), origin).Inc()
	c.logger.DebugContext(ctx, "overlay transition",
		slog.String("from", prev.Kind.String()),
		slog.String("to", next.Kind.String()),
		slog.String("target_id", next.TargetID),
		slog.Uint64("generation", next.Generation),
		slog.String("origin", origin),
	)

	for _, fn := range subs {
		fn(next)
	}
	if restore {
		c.viewport.ScrollTo(offset)
	}
	return next, true
}

func (c *Controller) capture(ctx context.Context, offset int) {
	if err := c.scroll.Save(ctx, c.scrollKey, offset); err != nil {
		c.logger.WarnContext(ctx, "failed to save scroll offset",
			slog.String("key", c.scrollKey),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Controller) take(ctx context.Context) (int, bool) {
	offset, ok, err := c.scroll.Take(ctx, c.scrollKey)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to restore scroll offset",
			slog.String("key", c.scrollKey),
			slog.String("error", err.Error()),
		)
		return 0, false
	}
	return offset, ok
}
