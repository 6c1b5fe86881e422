package domain

// CartItem is one line of the cart. Name, Price and Image are copied from
// the product when the line is created.
type CartItem struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
}

// Subtotal returns Price * Quantity in cents.
func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Cart is a read model over the cart lines with derived totals.
type Cart struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	Total     int64      `json:"total"`
	Currency  string     `json:"currency"`
}

// NewCart computes the totals for items. A nil slice yields an empty cart.
func NewCart(items []CartItem) Cart {
	if items == nil {
		items = []CartItem{}
	}
	c := Cart{Items: items, Currency: Currency}
	for _, it := range items {
		c.ItemCount += it.Quantity
		c.Total += it.Subtotal()
	}
	return c
}

// Find returns the line with the given id.
func (c Cart) Find(itemID string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return CartItem{}, false
}
