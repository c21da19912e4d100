package storeclient

import "context"

// Client is the full operation set of the remote storefront backend. Every
// method is a one-shot call with no built-in retry; resilience is layered on
// by the data-synchronization layer. Implementations are stateless aside
// from their credential binding and never touch the local cache.
type Client interface {
	// Catalog reads.
	GetProducts(ctx context.Context, filters []Filter) ([]Product, error)
	GetOwnerProducts(ctx context.Context) ([]Product, error)
	GetCategories(ctx context.Context) ([]Category, error)

	// Cart and wishlist. These require an identity-bound client.
	GetCart(ctx context.Context) (Cart, error)
	AddToCart(ctx context.Context, id ProductID) error
	RemoveFromCart(ctx context.Context, id ProductID) error
	ClearCart(ctx context.Context) error
	GetWishlist(ctx context.Context) (Wishlist, error)
	AddToWishlist(ctx context.Context, id ProductID) error
	RemoveFromWishlist(ctx context.Context, id ProductID) error

	// Orders.
	PlaceOrder(ctx context.Context, address ShippingAddress) (OrderID, error)
	GetOrder(ctx context.Context, id OrderID) (Order, error)
	GetAllCustomerOrders(ctx context.Context, userID UserID) ([]Order, error)
	GetAllOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id OrderID, status OrderStatus) error

	// Admin catalog management.
	AddProduct(ctx context.Context, input ProductInput) (ProductID, error)
	UpdateProduct(ctx context.Context, id ProductID, input ProductInput) error
	DeleteProduct(ctx context.Context, id ProductID) error
	AddCategory(ctx context.Context, input CategoryInput) (CategoryID, error)
	UpdateCategory(ctx context.Context, id CategoryID, input CategoryInput) error
	DeleteCategory(ctx context.Context, id CategoryID) error

	// Site configuration.
	GetSiteSettings(ctx context.Context) (SiteSettings, error)
	UpdateSiteSettings(ctx context.Context, settings SiteSettings) error
	IsStripeConfigured(ctx context.Context) (bool, error)
	SetStripeConfiguration(ctx context.Context, config StripeConfiguration) error

	// Promotions and referrals.
	GetAllCoupons(ctx context.Context) ([]Coupon, error)
	GetUserReferrals(ctx context.Context, userID UserID) ([]UserID, error)

	// Authorization probes.
	GetCallerUserRole(ctx context.Context) (UserRole, error)
	IsCallerAdmin(ctx context.Context) (bool, error)

	// HealthCheck returns HealthRunning when the backend is responsive.
	HealthCheck(ctx context.Context) (string, error)
}

// HealthRunning is the healthy response of Client.HealthCheck.
const HealthRunning = "Running"
