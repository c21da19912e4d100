package storefront

import (
	"context"

	"github.com/illmade-knight/go-storesync/pkg/querycache"
	"github.com/illmade-knight/go-storesync/pkg/storeclient"
)

// defaultOpts is the shopper-side baseline: a freshness window, focus-driven
// refresh, and the standard retry budget.
func (s *Session) defaultOpts() querycache.Options {
	return querycache.Options{
		StaleTime:      s.cfg.StaleTime,
		GCTime:         s.cfg.GCTime,
		RefetchOnFocus: true,
		Retry:          s.cfg.queryRetry(),
	}
}

// adminOpts keeps admin views always-stale so every mount refetches: an
// admin editing data expects to see their own writes immediately.
func (s *Session) adminOpts() querycache.Options {
	return querycache.Options{
		StaleTime: 0,
		GCTime:    s.cfg.GCTime,
		Retry:     s.cfg.queryRetry(),
	}
}

// --- Public catalog ---

// PublicProducts lists the catalog through the anonymous client, so browsing
// works without a sign-in. The filter clauses extend the cache key: each
// distinct filter combination caches independently.
func (s *Session) PublicProducts(filters ...storeclient.Filter) *Query[[]storeclient.Product] {
	return newQuery(s, KeyPublicProducts(filters...), s.defaultOpts(),
		func(ctx context.Context) ([]storeclient.Product, error) {
			client, err := s.public.Get(ctx)
			if err != nil {
				return nil, err
			}
			return client.GetProducts(ctx, filters)
		})
}

// PublicCategories lists categories through the anonymous client.
func (s *Session) PublicCategories() *Query[[]storeclient.Category] {
	return newQuery(s, KeyPublicCategories(), s.defaultOpts(),
		func(ctx context.Context) ([]storeclient.Category, error) {
			client, err := s.public.Get(ctx)
			if err != nil {
				return nil, err
			}
			return client.GetCategories(ctx)
		})
}

// --- Admin catalog ---

// AdminProducts is the admin-scoped product list, cached separately from the
// public listing.
func (s *Session) AdminProducts(filters ...storeclient.Filter) *Query[[]storeclient.Product] {
	return newQuery(s, KeyProducts(filters...), s.adminOpts(),
		func(ctx context.Context) ([]storeclient.Product, error) {
			client, err := s.adminProvider().Get(ctx)
			if err != nil {
				return nil, err
			}
			return client.GetProducts(ctx, filters)
		})
}

// AdminCategories is the admin-scoped category list.
func (s *Session) AdminCategories() *Query[[]storeclient.Category] {
	return newQuery(s, KeyCategories(), s.adminOpts(),
		func(ctx context.Context) ([]storeclient.Category, error) {
			client, err := s.adminProvider().Get(ctx)
			if err != nil {
				return nil, err
			}
			return client.GetCategories(ctx)
		})
}

// VendorProducts lists the signed-in vendor's own products.
func (s *Session) VendorProducts() *Query[[]storeclient.Product] {
	opts := s.defaultOpts()
	opts.Retry = s.cfg.retry(1)
	return newQuery(s, KeyVendorProducts(), opts,
		func(ctx context.Context) ([]storeclient.Product, error) {
			if s.identity() == nil {
				return []storeclient.Product{}, nil
			}
			client, err := s.user.Get(ctx)
			if err != nil {
				return nil, err
			}
			return client.GetOwnerProducts(ctx)
		})
}

// --- Identity-scoped reads ---
// These degrade to empty results while no identity is bound, so UI that
// renders for anonymous visitors never trips an authorization error.

// Cart is the signed-in user's cart.
func (s *Session) Cart() *Query[storeclient.Cart] {
	return newQuery(s, KeyCart(), s.defaultOpts(),
		func(ctx context.Context) (storeclient.Cart, error) {
			if s.identity() == nil {
				return storeclient.Cart{}, nil
			}
			client, err := s.user.Get(ctx)
			if err != nil {
				return storeclient.Cart{}, err
			}
			return client.GetCart(ctx)
		})
}

// Wishlist is the signed-in user's wishlist.
func (s *Session) Wishlist() *Query[storeclient.Wishlist] {
	return newQuery(s, KeyWishlist(), s.defaultOpts(),
		func(ctx context.Context) (storeclient.Wishlist, error) {
			if s.identity() == nil {
				return storeclient.Wishlist{}, nil
			}
			client, err := s.user.Get(ctx)
			if err != nil {
				return storeclient.Wishlist{}, err
			}
			return client.GetWishlist(ctx)
		})
}

// Orders is the signed-in user's order history. It polls so that status
// changes made by an admin appear without a manual refresh.
func (s *Session) Orders() *Query[[]storeclient.Order] {
	opts := s.defaultOpts()
	opts.RefetchInterval = s.cfg.OrdersPollInterval
	return newQuery(s, KeyOrders(), opts,
		func(ctx context.Context) ([]storeclient.Order, error) {
			identity := s.identity()
			if identity == nil {
				return []storeclient.Order{}, nil
			}
			client, err := s.user.Get(ctx)
			if err != nil {
				return nil, err
			}
			return client.GetAllCustomerOrders(ctx, storeclient.UserID(identity.Principal()))
		})
}

// Order watches a single order, polling faster than the list view.
func (s *Session) Order(id storeclient.OrderID) *Query[storeclient.Order] {
	opts := s.defaultOpts()
	opts.RefetchInterval = s.cfg.OrderPollInterval
	opts.Retry = s.cfg.retry(1)
	return newQuery(s, KeyOrder(id), opts,
		func(ctx context.Context) (storeclient.Order, error) {
			client, err := s.user.Get(ctx)
			if err != nil {
				return storeclient.Order{}, err
			}
			return client.GetOrder(ctx, id)
		})
}

// Referrals lists the users referred by the signed-in principal.
func (s *Session) Referrals() *Query[[]storeclient.UserID] {
	identity := s.identity()
	userID := storeclient.UserID("")
	if identity != nil {
		userID = storeclient.UserID(identity.Principal())
	}
	return newQuery(s, KeyReferrals(userID), s.defaultOpts(),
		func(ctx context.Context) ([]storeclient.UserID, error) {
			if s.identity() == nil {
				return []storeclient.UserID{}, nil
			}
			client, err := s.user.Get(ctx)
			if err != nil {
				return nil, err
			}
			return client.GetUserReferrals(ctx, userID)
		})
}

// --- Admin orders and stats ---

// AdminOrders lists every order in the system.
func (s *Session) AdminOrders() *Query[[]storeclient.Order] {
	return newQuery(s, KeyAdminOrders(), s.adminOpts(),
		func(ctx context.Context) ([]storeclient.Order, error) {
			client, err := s.adminProvider().Get(ctx)
			if err != nil {
				return nil, err
			}
			return client.GetAllOrders(ctx)
		})
}

// DashboardStats derives the admin dashboard numbers from the full order
// list. The derivation is local; only the order fetch hits the backend.
func (s *Session) DashboardStats() *Query[DashboardStats] {
	return newQuery(s, KeyDashboardStats(), s.adminOpts(),
		func(ctx context.Context) (DashboardStats, error) {
			client, err := s.adminProvider().Get(ctx)
			if err != nil {
				return DashboardStats{}, err
			}
			orders, err := client.GetAllOrders(ctx)
			if err != nil {
				return DashboardStats{}, err
			}
			return ComputeDashboardStats(orders), nil
		})
}

// --- Site configuration and authorization probes ---

// SiteSettings reads the storefront's presentational settings. No retry: a
// missing logo is not worth hammering an unavailable backend for.
func (s *Session) SiteSettings() *Query[storeclient.SiteSettings] {
	opts := s.defaultOpts()
	opts.Retry = s.cfg.retry(0)
	return newQuery(s, KeySiteSettings(), opts,
		func(ctx context.Context) (storeclient.SiteSettings, error) {
			client, err := s.public.Get(ctx)
			if err != nil {
				return storeclient.SiteSettings{}, err
			}
			return client.GetSiteSettings(ctx)
		})
}

// StripeConfigured reports whether checkout can offer card payment.
func (s *Session) StripeConfigured() *Query[bool] {
	return newQuery(s, KeyStripeConfigured(), s.defaultOpts(),
		func(ctx context.Context) (bool, error) {
			client, err := s.public.Get(ctx)
			if err != nil {
				return false, err
			}
			return client.IsStripeConfigured(ctx)
		})
}

// Coupons lists active discount codes.
func (s *Session) Coupons() *Query[[]storeclient.Coupon] {
	return newQuery(s, KeyCoupons(), s.defaultOpts(),
		func(ctx context.Context) ([]storeclient.Coupon, error) {
			client, err := s.user.Get(ctx)
			if err != nil {
				return nil, err
			}
			return client.GetAllCoupons(ctx)
		})
}

// UserRole reads the caller's role. No retry: a role probe failing once is
// answered on the next mount.
func (s *Session) UserRole() *Query[storeclient.UserRole] {
	opts := s.defaultOpts()
	opts.Retry = s.cfg.retry(0)
	return newQuery(s, KeyUserRole(), opts,
		func(ctx context.Context) (storeclient.UserRole, error) {
			client, err := s.user.Get(ctx)
			if err != nil {
				return storeclient.RoleGuest, err
			}
			return client.GetCallerUserRole(ctx)
		})
}

// IsAdmin probes for admin capability. A failed probe is reported as "not
// an admin" rather than an error: the check gates UI affordances, and an
// error state would leak the distinction the neutral answer exists to hide.
func (s *Session) IsAdmin() *Query[bool] {
	opts := s.defaultOpts()
	opts.Retry = s.cfg.retry(0)
	return newQuery(s, KeyIsAdmin(), opts,
		func(ctx context.Context) (bool, error) {
			client, err := s.user.Get(ctx)
			if err != nil {
				return false, nil
			}
			isAdmin, err := client.IsCallerAdmin(ctx)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Admin capability probe failed; treating caller as non-admin.")
				return false, nil
			}
			return isAdmin, nil
		})
}

// Health polls the backend's health probe through the admin client.
func (s *Session) Health() *Query[string] {
	return newQuery(s, KeyHealth(), querycache.Options{
		StaleTime:       s.cfg.HealthStaleTime,
		GCTime:          s.cfg.GCTime,
		RefetchInterval: s.cfg.HealthPollInterval,
		Retry:           s.cfg.queryRetry(),
	},
		func(ctx context.Context) (string, error) {
			client, err := s.adminProvider().Get(ctx)
			if err != nil {
				return "", err
			}
			return client.HealthCheck(ctx)
		})
}
