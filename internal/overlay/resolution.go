package overlay

import (
	"errors"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Resolution is the wire form of a View, returned by the overlay endpoint.
type Resolution struct {
	State   State            `json:"state"`
	Status  Status           `json:"status"`
	Product *domain.Product  `json:"product,omitempty"`
	Cart    *domain.Cart     `json:"cart,omitempty"`
	Error   *ResolutionError `json:"error,omitempty"`
}

// ResolutionError is the displayed error of a failed overlay.
type ResolutionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewResolution converts v. Errors without a code are reported as internal
// so their details stay server-side.
func NewResolution(v View) Resolution {
	r := Resolution{
		State:   State{Kind: v.Kind, TargetID: v.TargetID, Generation: v.Generation},
		Status:  v.Status,
		Product: v.Product,
		Cart:    v.Cart,
	}
	if v.Err == nil {
		return r
	}

	var appErr *apperrors.AppError
	if errors.As(v.Err, &appErr) {
		r.Error = &ResolutionError{Code: appErr.Code, Message: appErr.Message}
	} else {
		r.Error = &ResolutionError{Code: "INTERNAL_ERROR", Message: "overlay content could not be loaded"}
	}
	return r
}
