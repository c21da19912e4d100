package storefront

import "github.com/illmade-knight/go-storesync/pkg/querycache"

// MutationName identifies a write operation in the invalidation table and in
// log fields.
type MutationName string

const (
	MutationAddProduct    MutationName = "addProduct"
	MutationUpdateProduct MutationName = "updateProduct"
	MutationDeleteProduct MutationName = "deleteProduct"

	MutationAddCategory    MutationName = "addCategory"
	MutationUpdateCategory MutationName = "updateCategory"
	MutationDeleteCategory MutationName = "deleteCategory"

	MutationAddToCart      MutationName = "addToCart"
	MutationRemoveFromCart MutationName = "removeFromCart"
	MutationClearCart      MutationName = "clearCart"

	MutationAddToWishlist      MutationName = "addToWishlist"
	MutationRemoveFromWishlist MutationName = "removeFromWishlist"

	MutationPlaceOrder        MutationName = "placeOrder"
	MutationUpdateOrderStatus MutationName = "updateOrderStatus"

	MutationUpdateSiteSettings     MutationName = "updateSiteSettings"
	MutationSetStripeConfiguration MutationName = "setStripeConfiguration"
)

// invalidationTable is the single authority on which cache-key prefixes each
// mutation marks stale on success. Mutations and the queries they affect
// live in different call sites; an omission here is the one way this system
// produces silently stale UI, so every new mutation must add a reviewable
// row. newRunner refuses mutations without one.
//
// updateOrderStatus additionally invalidates the specific order-by-id key,
// declared as its scope function in the runner constructor since the key
// depends on the input.
var invalidationTable = map[MutationName][]querycache.Key{
	MutationAddProduct:    {KeyProducts(), KeyPublicProducts(), KeyVendorProducts()},
	MutationUpdateProduct: {KeyProducts(), KeyPublicProducts(), KeyVendorProducts()},
	MutationDeleteProduct: {KeyProducts(), KeyPublicProducts(), KeyVendorProducts()},

	MutationAddCategory:    {KeyCategories(), KeyPublicCategories()},
	MutationUpdateCategory: {KeyCategories(), KeyPublicCategories()},
	MutationDeleteCategory: {KeyCategories(), KeyPublicCategories()},

	MutationAddToCart:      {KeyCart()},
	MutationRemoveFromCart: {KeyCart()},
	MutationClearCart:      {KeyCart()},

	MutationAddToWishlist:      {KeyWishlist()},
	MutationRemoveFromWishlist: {KeyWishlist()},

	MutationPlaceOrder:        {KeyCart(), KeyOrders(), KeyDashboardStats()},
	MutationUpdateOrderStatus: {KeyAdminOrders(), KeyOrders(), KeyDashboardStats()},

	MutationUpdateSiteSettings:     {KeySiteSettings()},
	MutationSetStripeConfiguration: {KeyStripeConfigured()},
}
