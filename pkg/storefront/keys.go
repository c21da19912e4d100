package storefront

import (
	"strconv"

	"github.com/illmade-knight/go-storesync/pkg/querycache"
	"github.com/illmade-knight/go-storesync/pkg/storeclient"
)

func orderToken(id storeclient.OrderID) string {
	return strconv.FormatInt(int64(id), 10)
}

// The cache-key taxonomy. Every cached read in the system derives its key
// from one of these constructors; the invalidation table references the same
// constructors, so a renamed key can never silently detach its readers from
// their writers.
//
// Public/shopper catalog keys are deliberately separate from admin-scoped
// catalog keys: the two surfaces cache independently and are invalidated
// together by catalog mutations.

func KeyPublicProducts(filters ...storeclient.Filter) querycache.Key {
	return querycache.NewKey("publicProducts").With(storeclient.FilterTokens(filters)...)
}

func KeyPublicCategories() querycache.Key {
	return querycache.NewKey("publicCategories")
}

func KeyProducts(filters ...storeclient.Filter) querycache.Key {
	return querycache.NewKey("products").With(storeclient.FilterTokens(filters)...)
}

func KeyCategories() querycache.Key {
	return querycache.NewKey("categories")
}

func KeyVendorProducts() querycache.Key {
	return querycache.NewKey("vendorProducts")
}

// Identity-scoped keys. These are wiped wholesale at logout.

func KeyCart() querycache.Key {
	return querycache.NewKey("cart")
}

func KeyWishlist() querycache.Key {
	return querycache.NewKey("wishlist")
}

func KeyOrders() querycache.Key {
	return querycache.NewKey("orders")
}

func KeyOrder(id storeclient.OrderID) querycache.Key {
	return querycache.NewKey("order", orderToken(id))
}

func KeyUserRole() querycache.Key {
	return querycache.NewKey("userRole")
}

func KeyIsAdmin() querycache.Key {
	return querycache.NewKey("isAdmin")
}

func KeyReferrals(userID storeclient.UserID) querycache.Key {
	return querycache.NewKey("referrals", string(userID))
}

// Admin and site-wide keys.

func KeyAdminOrders() querycache.Key {
	return querycache.NewKey("adminOrders")
}

func KeyDashboardStats() querycache.Key {
	return querycache.NewKey("dashboardStats")
}

func KeyCoupons() querycache.Key {
	return querycache.NewKey("coupons")
}

func KeySiteSettings() querycache.Key {
	return querycache.NewKey("siteSettings")
}

func KeyStripeConfigured() querycache.Key {
	return querycache.NewKey("stripeConfigured")
}

func KeyHealth() querycache.Key {
	return querycache.NewKey("adminHealthCheck")
}
