// Package api contains the wire-level request and response shapes of the UCP
// bridge.
package api

// TokenResponse is the body returned by the token endpoint on a successful
// authorization-code exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// LineItemRequest is a single agent-submitted line in a checkout-session
// payload.
type LineItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity,omitempty"`
}

// CheckoutSessionRequest is the create/update body for checkout sessions.
type CheckoutSessionRequest struct {
	Items []LineItemRequest `json:"items"`
}

// CheckoutSessionResponse is the session view returned to agents. CheckoutURL
// is only populated on creation.
type CheckoutSessionResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// ProductMetadata carries the UCP-specific pointers decorating a catalog
// projection so agents can navigate from product to checkout.
type ProductMetadata struct {
	CheckoutEndpoint string `json:"checkout_endpoint"`
	Capability       string `json:"capability"`
}

// ProductResponse is the catalog projection returned on product reads.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       string          `json:"price"`
	Currency    string          `json:"currency"`
	Images      []string        `json:"images"`
	UCPMetadata ProductMetadata `json:"ucp_metadata"`
}

// Manifest is the UCP capability manifest served at /.well-known/ucp.
type Manifest struct {
	Version      string            `json:"version"`
	Endpoints    ManifestEndpoints `json:"endpoints"`
	Capabilities []string          `json:"capabilities"`
}

// ManifestEndpoints names the endpoints a discovering agent needs.
type ManifestEndpoints struct {
	CheckoutSessions string `json:"checkout_sessions"`
	IdentityLinking  string `json:"identity_linking"`
}

// AuthServerMetadata is the OAuth 2.0 authorization server metadata document
// served at /.well-known/oauth-authorization-server.
type AuthServerMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	SubjectTypesSupported             []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	ScopesSupported                   []string `json:"scopes_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
}
