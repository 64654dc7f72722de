package models

import "strings"

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusDraft             OrderStatus = "DRAFT"
	OrderStatusPendingPayment    OrderStatus = "PENDING_PAYMENT"
	OrderStatusPaymentSuccessful OrderStatus = "PAYMENT_SUCCESSFUL"
	OrderStatusPaymentFailed     OrderStatus = "PAYMENT_FAILED"
	OrderStatusPending           OrderStatus = "PENDING"
	OrderStatusConfirmed         OrderStatus = "CONFIRMED"
	OrderStatusShipped           OrderStatus = "SHIPPED"
	OrderStatusDelivered         OrderStatus = "DELIVERED"
	OrderStatusCancelled         OrderStatus = "CANCELLED"
	OrderStatusReturnRequested   OrderStatus = "RETURN_REQUESTED"
	OrderStatusReturnInProgress  OrderStatus = "RETURN_IN_PROGRESS"
	OrderStatusReturned          OrderStatus = "RETURNED"

	// OrderStatusUnknown buckets anything outside the enumeration
	OrderStatusUnknown OrderStatus = "UNKNOWN"
)

// OrderStatuses lists the enumerated statuses in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusPendingPayment,
	OrderStatusPaymentSuccessful,
	OrderStatusPaymentFailed,
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturnRequested,
	OrderStatusReturnInProgress,
	OrderStatusReturned,
}

var knownStatuses = func() map[OrderStatus]struct{} {
	m := make(map[OrderStatus]struct{}, len(OrderStatuses))
	for _, s := range OrderStatuses {
		m[s] = struct{}{}
	}
	return m
}()

// IsKnown reports whether s is one of the enumerated statuses
func (s OrderStatus) IsKnown() bool {
	_, ok := knownStatuses[s]
	return ok
}

// ParseOrderStatus normalizes wire spellings such as "pending-payment" or
// "Payment Successful". Unrecognized values map to OrderStatusUnknown.
func ParseOrderStatus(raw string) OrderStatus {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	status := OrderStatus(s)
	if status.IsKnown() {
		return status
	}
	return OrderStatusUnknown
}
