package storeclient

// OrderStatus is the fulfillment state of an order. The values form an
// expected progression plus the terminal cancelled state, but no transition
// graph is enforced here: an authorized caller may set any status, and the
// UI decides which transitions to offer.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Label returns the human-readable English label for a status.
func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "Pending"
	case OrderProcessing:
		return "Processing"
	case OrderConfirmed:
		return "Confirmed"
	case OrderShipped:
		return "Shipped"
	case OrderDelivered:
		return "Delivered"
	case OrderCompleted:
		return "Completed"
	case OrderCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Valid reports whether the status is one of the known values.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderConfirmed, OrderShipped,
		OrderDelivered, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// AvailableOrderStatuses lists every status in presentation order, for admin
// status selectors.
func AvailableOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderPending,
		OrderProcessing,
		OrderConfirmed,
		OrderShipped,
		OrderDelivered,
		OrderCompleted,
		OrderCancelled,
	}
}
