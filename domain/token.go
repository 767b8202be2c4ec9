package domain

import "time"

// Token represents an opaque bearer access token. Possession equals
// authorization: validation is a store lookup, not a signature check, and
// expiry is the only termination path.
type Token struct {
	ID         string    `json:"id"`          // Unique token record identifier
	TokenValue string    `json:"token_value"` // The opaque token string
	ClientID   string    `json:"client_id"`   // Client the token was issued to
	UserID     string    `json:"user_id"`     // User that authorized the token
	Scope      string    `json:"scope"`       // Authorized scopes
	ExpiresAt  time.Time `json:"expires_at"`  // Expiration timestamp
	CreatedAt  time.Time `json:"created_at"`  // Issuance timestamp
}
