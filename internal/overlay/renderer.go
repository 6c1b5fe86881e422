package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
)

// Loader reads the content an overlay displays.
type Loader interface {
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	ListCartItems(ctx context.Context) ([]domain.CartItem, error)
}

// DataSource is a Loader that also accepts the cart actions offered from
// inside an overlay.
type DataSource interface {
	Loader
	AddToCart(ctx context.Context, productID string, quantity int) (domain.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, itemID string, quantity int) (domain.CartItem, error)
	RemoveFromCart(ctx context.Context, itemID string) error
}

// Status is the lifecycle of a View.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// ErrMissingProductID is reported for a product overlay without an id.
var ErrMissingProductID = apperrors.InvalidInput("product id is missing")

// View is what an overlay displays for one generation. Failed views are
// terminal; the overlay has to be closed and reopened.
type View struct {
	Generation uint64
	Kind       Kind
	TargetID   string
	Status     Status
	Product    *domain.Product
	Cart       *domain.Cart
	Err        error
}

// Load resolves the content for s.
func Load(ctx context.Context, src Loader, s State) View {
	v := View{Generation: s.Generation, Kind: s.Kind, TargetID: s.TargetID}
	switch {
	case !s.IsOpen():
		v.Status = StatusIdle
		return v
	case s.Missing():
		v.Status = StatusFailed
		v.Err = ErrMissingProductID
		return v
	}

	switch s.Kind {
	case ProductDetail:
		p, err := src.GetProduct(ctx, s.TargetID)
		if err != nil {
			return v.failed(fmt.Errorf("get product %s: %w", s.TargetID, err))
		}
		v.Product = &p
	case CartSummary:
		items, err := src.ListCartItems(ctx)
		if err != nil {
			return v.failed(fmt.Errorf("list cart items: %w", err))
		}
		cart := domain.NewCart(items)
		v.Cart = &cart
	}
	v.Status = StatusReady
	return v
}

func (v View) failed(err error) View {
	v.Status = StatusFailed
	v.Err = err
	return v
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRendererLogger sets the renderer's logger.
func WithRendererLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) { r.logger = l }
}

// WithFetchTimeout bounds every content fetch.
func WithFetchTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) { r.timeout = d }
}

// Renderer follows a Controller and loads the content of each overlay it
// opens. Every fetch is tagged with the generation it was issued for, and a
// result that arrives after a newer transition is discarded.
type Renderer struct {
	ctrl    *Controller
	data    DataSource
	logger  *slog.Logger
	tracer  trace.Tracer
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	view        View
	closed      bool
	subs        map[uint64]func(View)
	nextSub     uint64
	unsubscribe func()
}

func NewRenderer(ctrl *Controller, data DataSource, opts ...RendererOption) *Renderer {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Renderer{
		ctrl:    ctrl,
		data:    data,
		logger:  logger.Discard(),
		tracer:  tracing.Tracer("storefront/overlay"),
		timeout: 10 * time.Second,
		ctx:     ctx,
		cancel:  cancel,
		subs:    make(map[uint64]func(View)),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.unsubscribe = ctrl.Subscribe(r.onState)
	r.onState(ctrl.State())
	return r
}

// View returns the latest view.
func (r *Renderer) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Subscribe registers fn for every published view.
func (r *Renderer) Subscribe(fn func(View)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

// AddToCart adds quantity of the displayed product and closes the overlay.
// The overlay is left alone when another one replaced it during the add.
func (r *Renderer) AddToCart(ctx context.Context, quantity int) (domain.CartItem, error) {
	v := r.View()
	if v.Kind != ProductDetail || v.Status != StatusReady || v.Product == nil {
		return domain.CartItem{}, apperrors.InvalidInput("no product is displayed")
	}
	if quantity < 1 {
		return domain.CartItem{}, apperrors.InvalidInput("quantity must be at least 1")
	}

	item, err := r.data.AddToCart(ctx, v.Product.ID, quantity)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("add product %s to cart: %w", v.Product.ID, err)
	}
	if !r.ctrl.CloseIf(ctx, v.Generation) {
		r.logger.DebugContext(ctx, "overlay changed during add to cart",
			slog.Uint64("generation", v.Generation),
			slog.String("product_id", v.Product.ID),
		)
	}
	return item, nil
}

// UpdateQuantity changes a line of the displayed cart. Quantities below one
// are ignored.
func (r *Renderer) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return nil
	}
	gen, err := r.cartGeneration()
	if err != nil {
		return err
	}
	if _, err := r.data.UpdateCartItemQuantity(ctx, itemID, quantity); err != nil {
		return fmt.Errorf("update cart item %s: %w", itemID, err)
	}
	return r.refreshCart(ctx, gen)
}

// RemoveItem removes a line of the displayed cart.
func (r *Renderer) RemoveItem(ctx context.Context, itemID string) error {
	gen, err := r.cartGeneration()
	if err != nil {
		return err
	}
	if err := r.data.RemoveFromCart(ctx, itemID); err != nil {
		return fmt.Errorf("remove cart item %s: %w", itemID, err)
	}
	return r.refreshCart(ctx, gen)
}

// Wait blocks until every fetch started so far has finished.
func (r *Renderer) Wait() {
	r.wg.Wait()
}

// Close stops following the controller and abandons in-flight fetches.
func (r *Renderer) Close() {
	r.unsubscribe()
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
	r.wg.Wait()
}

func (r *Renderer) cartGeneration() (uint64, error) {
	v := r.View()
	if v.Kind != CartSummary || v.Status != StatusReady {
		return 0, apperrors.InvalidInput("cart is not displayed")
	}
	return v.Generation, nil
}

func (r *Renderer) refreshCart(ctx context.Context, gen uint64) error {
	items, err := r.data.ListCartItems(ctx)
	if err != nil {
		return fmt.Errorf("list cart items: %w", err)
	}
	cart := domain.NewCart(items)
	r.apply(View{Generation: gen, Kind: CartSummary, Status: StatusReady, Cart: &cart})
	return nil
}

func (r *Renderer) onState(s State) {
	r.mu.Lock()
	if r.closed || s.Generation < r.view.Generation ||
		(s.Generation == r.view.Generation && r.view.Status != "") {
		r.mu.Unlock()
		return
	}

	async := s.IsOpen() && !s.Missing()
	if async {
		r.view = View{Generation: s.Generation, Kind: s.Kind, TargetID: s.TargetID, Status: StatusLoading}
		r.wg.Add(1)
		go r.fetch(s)
	} else {
		r.view = Load(r.ctx, r.data, s)
	}
	v, subs := r.view, r.subscribers()
	r.mu.Unlock()

	publish(subs, v)
}

func (r *Renderer) fetch(s State) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()
	ctx, span := r.tracer.Start(ctx, "overlay.fetch", trace.WithAttributes(
		attribute.String("overlay.kind", s.Kind.String()),
		attribute.String("overlay.target_id", s.TargetID),
		attribute.Int64("overlay.generation", int64(s.Generation)),
	))
	defer span.End()

	start := time.Now()
	v := Load(ctx, r.data, s)
	fetchDuration.WithLabelValues(s.Kind.String(), string(v.Status)).Observe(time.Since(start).Seconds())

	if v.Err != nil {
		span.RecordError(v.Err)
		span.SetStatus(codes.Error, v.Err.Error())
		r.logger.WarnContext(ctx, "overlay fetch failed",
			slog.String("kind", s.Kind.String()),
			slog.String("target_id", s.TargetID),
			slog.String("error", v.Err.Error()),
		)
	}
	if !r.apply(v) {
		span.SetAttributes(attribute.Bool("overlay.stale", true))
	}
}

// apply publishes v unless a newer generation is current. It reports whether
// v was published.
func (r *Renderer) apply(v View) bool {
	r.mu.Lock()
	if r.closed || v.Generation != r.view.Generation || !r.ctrl.IsCurrent(v.Generation) {
		r.mu.Unlock()
		staleResponsesTotal.WithLabelValues(v.Kind.String()).Inc()
		r.logger.Debug("discarding stale overlay result",
			slog.Uint64("generation", v.Generation),
			slog.String("kind", v.Kind.String()),
		)
		return false
	}
	r.view = v
	subs := r.subscribers()
	r.mu.Unlock()

	publish(subs, v)
	return true
}

func (r *Renderer) subscribers() []func(View) {
	subs := make([]func(View), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	return subs
}

func publish(subs []func(View), v View) {
	for _, fn := range subs {
		fn(v)
	}
}
