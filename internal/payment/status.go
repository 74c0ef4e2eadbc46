package payment

import "kideats-be/internal/order"

// MapTransactionStatus translates a Midtrans transaction status into the
// internal order status. Anything unrecognized maps to pending (a no-op),
// never to failed: an unknown-but-benign gateway status must not kill an
// order.
func MapTransactionStatus(transactionStatus, fraudStatus string) order.Status {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return order.StatusPaid
		}
		return order.StatusPending
	case "settlement":
		return order.StatusPaid
	case "cancel", "deny":
		return order.StatusFailed
	case "expire":
		return order.StatusExpired
	default:
		return order.StatusPending
	}
}
