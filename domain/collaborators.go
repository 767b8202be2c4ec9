package domain

import (
	"context"
	"errors"
	"net/http"
)

// ErrProductNotFound is returned by Catalog implementations when the
// identifier does not resolve.
var ErrProductNotFound = errors.New("product not found")

// Cart is the mutable backend cart collaborator. The broker clears it and
// re-adds items when a session is recovered, so implementations only need
// these two operations.
type Cart interface {
	Clear(ctx context.Context, ref string) error
	AddItem(ctx context.Context, ref string, productID int64, quantity int) error
}

// Catalog is the external read-only product store.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
}

// Principal resolves the human account holder behind an authorization
// request. Authentication itself (login, consent) is external: when no
// principal is present the gateway redirects to LoginURL and halts.
type Principal interface {
	// Current returns the authenticated user identity for the request, or
	// false when the caller is not authenticated.
	Current(r *http.Request) (string, bool)
	// LoginURL returns the external login page, carrying returnTo so the
	// user lands back on the authorization endpoint afterwards.
	LoginURL(returnTo string) string
}
