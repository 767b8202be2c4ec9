package domain

import "time"

// Checkout session statuses.
const (
	SessionStatusOpen    = "open"
	SessionStatusUpdated = "updated"
)

// LineItem is a single agent-submitted cart line. Quantity defaults to 1 when
// omitted or invalid.
type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CheckoutSession is a server-held, time-limited cart proposal submitted by an
// agent prior to purchase. The broker owns it exclusively; the backend cart
// only ever holds an overwritable projection of its items.
type CheckoutSession struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}
