// Package storeclient defines the boundary to the remote storefront backend:
// the domain types, the typed operation set, and the construction of client
// variants (anonymous vs identity-bound). The backend itself is opaque; every
// operation is a one-shot call whose failures are classified by the caller.
package storeclient

import "time"

// Identifier types mirror the backend's numeric ids; user ids are the textual
// principal of the signed-in identity.
type (
	ProductID  int64
	CategoryID int64
	OrderID    int64
	UserID     string
	CouponCode string
)

// UserRole is the backend's caller role.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// Product is one catalog item. Price is in cents.
type Product struct {
	ID          ProductID
	CategoryID  CategoryID
	Name        string
	Description string
	Price       int64
	Stock       int64
	ImageURL    string
}

// ProductInput is the payload for creating or replacing a product.
type ProductInput struct {
	CategoryID  CategoryID
	Name        string
	Description string
	Price       int64
	Stock       int64
	ImageURL    string
}

// Category groups products.
type Category struct {
	ID   CategoryID
	Name string
}

// CategoryInput is the payload for creating or replacing a category.
type CategoryInput struct {
	Name string
}

// CartItem is one product line in a cart.
type CartItem struct {
	ProductID ProductID
	Quantity  int64
}

// Cart is the signed-in user's current cart.
type Cart struct {
	Items []CartItem
}

// Wishlist is the signed-in user's saved products.
type Wishlist struct {
	ProductIDs []ProductID
}

// Coupon is a discount code with an expiry.
type Coupon struct {
	Code               CouponCode
	DiscountPercentage int64
	ValidUntil         time.Time
}

// ShippingAddress is the checkout destination.
type ShippingAddress struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

// Order is a placed order with its full status history. TotalAmount is in
// cents.
type Order struct {
	ID            OrderID
	UserID        UserID
	Status        OrderStatus
	StatusHistory []OrderStatus
	Items         []CartItem
	TotalAmount   int64
	PlacedAt      time.Time
}

// SiteSettings is the storefront's presentational configuration.
type SiteSettings struct {
	ShopName string
	Logo     string
}

// StripeConfiguration holds the payment processor setup. The secret key never
// enters the query cache; only the configured/not-configured flag is cached.
type StripeConfiguration struct {
	SecretKey        string
	AllowedCountries []string
}
