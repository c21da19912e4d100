package storefront

import "github.com/illmade-knight/go-storesync/pkg/storeclient"

// DashboardStats are the admin dashboard headline numbers, derived locally
// from the full order list.
type DashboardStats struct {
	TotalOrders  int
	TotalRevenue int64
}

// ComputeDashboardStats folds an order list into dashboard numbers.
// Cancelled orders still count: the dashboard reports volume, not settled
// revenue.
func ComputeDashboardStats(orders []storeclient.Order) DashboardStats {
	stats := DashboardStats{TotalOrders: len(orders)}
	for _, order := range orders {
		stats.TotalRevenue += order.TotalAmount
	}
	return stats
}
