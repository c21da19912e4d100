package storefront

import (
	"context"
	"strings"

	"github.com/illmade-knight/go-storesync/pkg/faultclass"
	"github.com/illmade-knight/go-storesync/pkg/querycache"
	"github.com/illmade-knight/go-storesync/pkg/storeclient"
)

// Composite inputs for mutations that address an existing record.

type UpdateProductInput struct {
	ID      storeclient.ProductID
	Product storeclient.ProductInput
}

type UpdateCategoryInput struct {
	ID       storeclient.CategoryID
	Category storeclient.CategoryInput
}

type UpdateOrderStatusInput struct {
	OrderID storeclient.OrderID
	Status  storeclient.OrderStatus
}

// --- Catalog management ---

// AddProduct creates a product through the admin client.
func (s *Session) AddProduct() *Runner[storeclient.ProductInput, storeclient.ProductID] {
	r := newRunner(s, MutationAddProduct, s.adminProvider(),
		func(ctx context.Context, client storeclient.Client, input storeclient.ProductInput) (storeclient.ProductID, error) {
			return client.AddProduct(ctx, input)
		})
	r.validate = validateProductInput
	return r
}

// UpdateProduct replaces a product's fields.
func (s *Session) UpdateProduct() *Runner[UpdateProductInput, struct{}] {
	r := newRunner(s, MutationUpdateProduct, s.adminProvider(),
		func(ctx context.Context, client storeclient.Client, input UpdateProductInput) (struct{}, error) {
			return struct{}{}, client.UpdateProduct(ctx, input.ID, input.Product)
		})
	r.validate = func(input UpdateProductInput) *faultclass.Classified {
		return validateProductInput(input.Product)
	}
	return r
}

// DeleteProduct removes a product.
func (s *Session) DeleteProduct() *Runner[storeclient.ProductID, struct{}] {
	return newRunner(s, MutationDeleteProduct, s.adminProvider(),
		func(ctx context.Context, client storeclient.Client, id storeclient.ProductID) (struct{}, error) {
			return struct{}{}, client.DeleteProduct(ctx, id)
		})
}

// AddCategory creates a category.
func (s *Session) AddCategory() *Runner[storeclient.CategoryInput, storeclient.CategoryID] {
	r := newRunner(s, MutationAddCategory, s.adminProvider(),
		func(ctx context.Context, client storeclient.Client, input storeclient.CategoryInput) (storeclient.CategoryID, error) {
			return client.AddCategory(ctx, input)
		})
	r.validate = validateCategoryInput
	return r
}

// UpdateCategory renames a category.
func (s *Session) UpdateCategory() *Runner[UpdateCategoryInput, struct{}] {
	r := newRunner(s, MutationUpdateCategory, s.adminProvider(),
		func(ctx context.Context, client storeclient.Client, input UpdateCategoryInput) (struct{}, error) {
			return struct{}{}, client.UpdateCategory(ctx, input.ID, input.Category)
		})
	r.validate = func(input UpdateCategoryInput) *faultclass.Classified {
		return validateCategoryInput(input.Category)
	}
	return r
}

// DeleteCategory removes a category.
func (s *Session) DeleteCategory() *Runner[storeclient.CategoryID, struct{}] {
	return newRunner(s, MutationDeleteCategory, s.adminProvider(),
		func(ctx context.Context, client storeclient.Client, id storeclient.CategoryID) (struct{}, error) {
			return struct{}{}, client.DeleteCategory(ctx, id)
		})
}

// --- Cart and wishlist ---

// AddToCart puts one unit of a product in the signed-in user's cart.
func (s *Session) AddToCart() *Runner[storeclient.ProductID, struct{}] {
	r := newRunner(s, MutationAddToCart, s.user,
		func(ctx context.Context, client storeclient.Client, id storeclient.ProductID) (struct{}, error) {
			return struct{}{}, client.AddToCart(ctx, id)
		})
	r.signInMessage = "Please sign in to add items to your cart."
	return r
}

// RemoveFromCart decrements or removes a cart line.
func (s *Session) RemoveFromCart() *Runner[storeclient.ProductID, struct{}] {
	r := newRunner(s, MutationRemoveFromCart, s.user,
		func(ctx context.Context, client storeclient.Client, id storeclient.ProductID) (struct{}, error) {
			return struct{}{}, client.RemoveFromCart(ctx, id)
		})
	r.signInMessage = "Please sign in to change your cart."
	return r
}

// ClearCart empties the cart.
func (s *Session) ClearCart() *Runner[struct{}, struct{}] {
	r := newRunner(s, MutationClearCart, s.user,
		func(ctx context.Context, client storeclient.Client, _ struct{}) (struct{}, error) {
			return struct{}{}, client.ClearCart(ctx)
		})
	r.signInMessage = "Please sign in to change your cart."
	return r
}

// AddToWishlist saves a product for later.
func (s *Session) AddToWishlist() *Runner[storeclient.ProductID, struct{}] {
	r := newRunner(s, MutationAddToWishlist, s.user,
		func(ctx context.Context, client storeclient.Client, id storeclient.ProductID) (struct{}, error) {
			return struct{}{}, client.AddToWishlist(ctx, id)
		})
	r.signInMessage = "Please sign in to use your wishlist."
	return r
}

// RemoveFromWishlist drops a saved product.
func (s *Session) RemoveFromWishlist() *Runner[storeclient.ProductID, struct{}] {
	r := newRunner(s, MutationRemoveFromWishlist, s.user,
		func(ctx context.Context, client storeclient.Client, id storeclient.ProductID) (struct{}, error) {
			return struct{}{}, client.RemoveFromWishlist(ctx, id)
		})
	r.signInMessage = "Please sign in to use your wishlist."
	return r
}

// --- Orders ---

// PlaceOrder converts the cart into an order shipped to the given address.
func (s *Session) PlaceOrder() *Runner[storeclient.ShippingAddress, storeclient.OrderID] {
	r := newRunner(s, MutationPlaceOrder, s.user,
		func(ctx context.Context, client storeclient.Client, address storeclient.ShippingAddress) (storeclient.OrderID, error) {
			return client.PlaceOrder(ctx, address)
		})
	r.signInMessage = "Please sign in to place an order."
	r.validate = validateShippingAddress
	return r
}

// UpdateOrderStatus sets an order's fulfillment status. Beyond the static
// table row it invalidates the watched order-by-id key, so both the list
// views and a customer tracking that order pick up the change.
func (s *Session) UpdateOrderStatus() *Runner[UpdateOrderStatusInput, struct{}] {
	r := newRunner(s, MutationUpdateOrderStatus, s.adminProvider(),
		func(ctx context.Context, client storeclient.Client, input UpdateOrderStatusInput) (struct{}, error) {
			return struct{}{}, client.UpdateOrderStatus(ctx, input.OrderID, input.Status)
		})
	r.validate = func(input UpdateOrderStatusInput) *faultclass.Classified {
		if !input.Status.Valid() {
			return faultclass.Invalidf("Unknown order status %q.", string(input.Status))
		}
		return nil
	}
	r.scope = func(input UpdateOrderStatusInput) []querycache.Key {
		return []querycache.Key{KeyOrder(input.OrderID)}
	}
	return r
}

// --- Site configuration ---

// UpdateSiteSettings replaces the storefront's presentational settings.
func (s *Session) UpdateSiteSettings() *Runner[storeclient.SiteSettings, struct{}] {
	return newRunner(s, MutationUpdateSiteSettings, s.adminProvider(),
		func(ctx context.Context, client storeclient.Client, settings storeclient.SiteSettings) (struct{}, error) {
			return struct{}{}, client.UpdateSiteSettings(ctx, settings)
		})
}

// SetStripeConfiguration installs payment credentials.
func (s *Session) SetStripeConfiguration() *Runner[storeclient.StripeConfiguration, struct{}] {
	r := newRunner(s, MutationSetStripeConfiguration, s.adminProvider(),
		func(ctx context.Context, client storeclient.Client, config storeclient.StripeConfiguration) (struct{}, error) {
			return struct{}{}, client.SetStripeConfiguration(ctx, config)
		})
	r.validate = func(config storeclient.StripeConfiguration) *faultclass.Classified {
		if strings.TrimSpace(config.SecretKey) == "" {
			return faultclass.Invalidf("A Stripe secret key is required.")
		}
		return nil
	}
	return r
}

// --- Local validation ---

func validateProductInput(input storeclient.ProductInput) *faultclass.Classified {
	if strings.TrimSpace(input.Name) == "" {
		return faultclass.Invalidf("Product name is required.")
	}
	if input.Price < 0 {
		return faultclass.Invalidf("Product price cannot be negative.")
	}
	if input.Stock < 0 {
		return faultclass.Invalidf("Product stock cannot be negative.")
	}
	return nil
}

func validateCategoryInput(input storeclient.CategoryInput) *faultclass.Classified {
	if strings.TrimSpace(input.Name) == "" {
		return faultclass.Invalidf("Category name is required.")
	}
	return nil
}

func validateShippingAddress(address storeclient.ShippingAddress) *faultclass.Classified {
	required := []struct{ value, label string }{
		{address.Name, "recipient name"},
		{address.Line1, "street address"},
		{address.City, "city"},
		{address.PostalCode, "postal code"},
		{address.Country, "country"},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return faultclass.Invalidf("Shipping address is missing the %s.", field.label)
		}
	}
	return nil
}
