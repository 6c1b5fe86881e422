package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/overlay"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// OverlayHandler resolves overlay query parameters to the content the
// overlay would display.
type OverlayHandler struct {
	loader overlay.Loader
	logger *slog.Logger
}

// NewOverlayHandler creates a new overlay HTTP handler.
func NewOverlayHandler(catalog *service.CatalogService, cart *service.CartService, logger *slog.Logger) *OverlayHandler {
	return &OverlayHandler{loader: serviceLoader{catalog: catalog, cart: cart}, logger: logger}
}

// Resolve handles GET /api/v1/overlay?modal=&id=
//
// Unknown modal tags resolve to a closed overlay. A missing or unknown
// product is reported inside the payload, the way the overlay displays it.
func (h *OverlayHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	state := overlay.Derive(r.URL.Query())
	view := overlay.Load(r.Context(), h.loader, state)

	var appErr *apperrors.AppError
	if view.Err != nil && !errors.As(view.Err, &appErr) {
		httputil.WriteError(w, r, view.Err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, overlay.NewResolution(view))
}

type serviceLoader struct {
	catalog *service.CatalogService
	cart    *service.CartService
}

func (l serviceLoader) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return l.catalog.GetProduct(ctx, id)
}

func (l serviceLoader) ListCartItems(ctx context.Context) ([]domain.CartItem, error) {
	cart, err := l.cart.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}
