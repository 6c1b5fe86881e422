package domain

// Currency is the only currency the storefront prices in.
const Currency = "USD"

// Product is a catalog entry. Price is in cents.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
}
