package payment

// Notification is the asynchronous callback body Midtrans posts to the
// webhook. It is untrusted until its signature is recomputed and matched.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	SignatureKey      string `json:"signature_key"`
}

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type ItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

// SnapRequest is the Snap transaction-creation payload.
type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	ItemDetails        []ItemDetail       `json:"item_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
}

type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// InitiateResult is returned to the client after a successful payment
// initiation.
type InitiateResult struct {
	SnapToken   string
	RedirectURL string
	OrderIDs    []string
	TotalAmount float64
}

// Outcome is the reconciler's tri-state result. The wire response only
// distinguishes 2xx from non-2xx, but collapsing ignored into applied (or
// worse, into rejected) internally makes redelivery bugs invisible.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeIgnored  Outcome = "ignored"
	OutcomeRejected Outcome = "rejected"
)
