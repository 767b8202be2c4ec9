package domain

import "time"

// AuthCode represents a short-lived OAuth 2.0 authorization code bound to the
// user who granted it and the client that requested it. Codes are single-use:
// the store entry is consumed atomically on exchange.
type AuthCode struct {
	Code      string    `json:"code"`       // Opaque authorization code
	ClientID  string    `json:"client_id"`  // Client application ID
	UserID    string    `json:"user_id"`    // User who authorized the request
	CreatedAt time.Time `json:"created_at"` // Issuance timestamp
}
