package domain

import "time"

// Product is a marketplace listing.
type Product struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Order records a purchase of a product.
type Order struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	BuyerID   int64     `json:"buyer_id"`
	Quantity  int       `json:"quantity"`
	Total     float64   `json:"total_price"`
	CreatedAt time.Time `json:"created_at"`
}
