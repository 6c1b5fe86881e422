package memory

import "github.com/utafrali/storefront/internal/domain"

const placeholderImage = "/placeholder.svg?height=300&width=300"

// SeedProducts returns the demo catalog.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Wireless Headphones", Description: "Premium wireless headphones with noise cancellation and 30-hour battery life.", Price: 19999, Image: placeholderImage},
		{ID: "2", Name: "Smart Watch", Description: "Track your fitness, receive notifications, and more with this sleek smart watch.", Price: 24999, Image: placeholderImage},
		{ID: "3", Name: "Bluetooth Speaker", Description: "Portable speaker with amazing sound quality and 12-hour battery life.", Price: 8999, Image: placeholderImage},
		{ID: "4", Name: "Laptop Backpack", Description: "Durable backpack with padded compartments for your laptop and accessories.", Price: 5999, Image: placeholderImage},
		{ID: "5", Name: "Wireless Charger", Description: "Fast wireless charging pad compatible with all Qi-enabled devices.", Price: 2999, Image: placeholderImage},
		{ID: "6", Name: "Mechanical Keyboard", Description: "Tactile mechanical keyboard with RGB lighting and programmable keys.", Price: 12999, Image: placeholderImage},
	}
}

// SeedCartItems returns the demo cart lines.
func SeedCartItems() []domain.CartItem {
	return []domain.CartItem{
		{ID: "cart1", ProductID: "1", Name: "Wireless Headphones", Price: 19999, Quantity: 1, Image: placeholderImage},
		{ID: "cart2", ProductID: "3", Name: "Bluetooth Speaker", Price: 8999, Quantity: 2, Image: placeholderImage},
	}
}
