package ucp

import (
	"strings"

	"github.com/Redemptive-Software/woocommerce-ucp/api"
)

// ManifestVersion is the UCP protocol version advertised to agents.
const ManifestVersion = "2026-01-11"

// Discovery assembles the two static documents served at well-known paths.
// Both are pure functions of the configured base URL; there is no state.
type Discovery struct {
	baseURL string
}

// NewDiscovery creates a Discovery rooted at baseURL (scheme and host, no
// trailing slash).
func NewDiscovery(baseURL string) *Discovery {
	return &Discovery{baseURL: strings.TrimRight(baseURL, "/")}
}

// Manifest returns the UCP capability manifest.
func (d *Discovery) Manifest() api.Manifest {
	return api.Manifest{
		Version: ManifestVersion,
		Endpoints: api.ManifestEndpoints{
			CheckoutSessions: d.baseURL + "/ucp/v1/checkout-sessions",
			IdentityLinking:  d.baseURL + "/ucp/auth",
		},
		Capabilities: []string{
			"checkout",
			"identity_linking",
			"order_management",
		},
	}
}

// AuthServerMetadata returns the OAuth 2.0 authorization server metadata.
func (d *Discovery) AuthServerMetadata() api.AuthServerMetadata {
	return api.AuthServerMetadata{
		Issuer:                           d.baseURL,
		AuthorizationEndpoint:            d.baseURL + "/ucp/auth",
		TokenEndpoint:                    d.baseURL + "/ucp/v1/token",
		ResponseTypesSupported:           []string{"code"},
		SubjectTypesSupported:            []string{"public"},
		IDTokenSigningAlgValuesSupported: []string{"RS256"},
		ScopesSupported: []string{
			"openid", "profile", "email", TokenScope,
		},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_basic"},
	}
}

// CheckoutEndpoint is the absolute checkout-session creation URL, embedded in
// catalog projections so agents can navigate from product to checkout.
func (d *Discovery) CheckoutEndpoint() string {
	return d.baseURL + "/ucp/v1/checkout-sessions"
}
