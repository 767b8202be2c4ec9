// Package auth provides the principal adapter the authorization endpoint
// consults. Authentication itself (login pages, consent) lives in the
// storefront, outside this bridge.
package auth

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultPrincipalHeader is the header a fronting proxy sets once the
// storefront has authenticated the visitor.
const DefaultPrincipalHeader = "X-Authenticated-User"

// HeaderPrincipal resolves the current user from a trusted request header.
// The deployment is expected to terminate storefront sessions in front of
// the bridge and inject the resolved identity.
type HeaderPrincipal struct {
	header   string
	loginURL string
}

// NewHeaderPrincipal creates a HeaderPrincipal reading header, redirecting
// unauthenticated callers to loginURL. An empty header falls back to
// DefaultPrincipalHeader.
func NewHeaderPrincipal(header, loginURL string) *HeaderPrincipal {
	if header == "" {
		header = DefaultPrincipalHeader
	}

	return &HeaderPrincipal{
		header:   header,
		loginURL: loginURL,
	}
}

// Current implements domain.Principal.Current.
func (p *HeaderPrincipal) Current(r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(p.header))

	return userID, userID != ""
}

// LoginURL implements domain.Principal.LoginURL.
func (p *HeaderPrincipal) LoginURL(returnTo string) string {
	u, err := url.Parse(p.loginURL)
	if err != nil {
		return p.loginURL
	}

	q := u.Query()
	q.Set("return_to", returnTo)
	u.RawQuery = q.Encode()

	return u.String()
}
