package ucp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Redemptive-Software/woocommerce-ucp/cache"
	"github.com/Redemptive-Software/woocommerce-ucp/domain"
)

// ErrSessionNotFound is returned when a checkout session id does not resolve.
var ErrSessionNotFound = errors.New("checkout session not found")

// DefaultSessionTTL is how long a checkout session stays recoverable.
const DefaultSessionTTL = 24 * time.Hour

// SessionQueryParam is the query parameter carrying the session reference on
// the backend's native checkout URL.
const SessionQueryParam = "ucp_session"

const sessionKeyPrefix = "ucp:session:"

// CheckoutBroker owns checkout sessions: it creates them from agent-submitted
// line items, persists them with a TTL, and synchronizes the backend cart
// when a human later arrives at the storefront carrying the session
// reference. The cart only ever holds a projection; the store is the source
// of truth.
type CheckoutBroker struct {
	store       cache.Store
	cart        domain.Cart
	checkoutURL string
	sessionTTL  time.Duration
}

// NewCheckoutBroker creates a broker persisting sessions in store and syncing
// them into cart. checkoutURL is the backend's native checkout page. A zero
// sessionTTL falls back to 24 hours.
func NewCheckoutBroker(store cache.Store, cart domain.Cart, checkoutURL string, sessionTTL time.Duration) *CheckoutBroker {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	return &CheckoutBroker{
		store:       store,
		cart:        cart,
		checkoutURL: checkoutURL,
		sessionTTL:  sessionTTL,
	}
}

// Create generates a fresh session from items and persists it. Creation is
// all-or-nothing: either the session is persisted or the call fails. Cart
// synchronization is deferred until recovery.
func (b *CheckoutBroker) Create(ctx context.Context, items []domain.LineItem) (*domain.CheckoutSession, error) {
	// 16 bytes of entropy makes collisions negligible; no uniqueness check
	// against existing sessions is performed.
	id, err := generateSecret(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	session := &domain.CheckoutSession{
		ID:        id,
		Items:     normalizeItems(items),
		Status:    domain.SessionStatusOpen,
		CreatedAt: time.Now(),
	}

	if err := b.store.Set(ctx, sessionKeyPrefix+id, session, b.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to persist checkout session: %w", err)
	}

	log.Info().
		Str("session_id", id).
		Int("items", len(session.Items)).
		Msg("checkout session created")

	return session, nil
}

// Get reads a session back from the store.
func (b *CheckoutBroker) Get(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	var session domain.CheckoutSession
	if err := b.store.Get(ctx, sessionKeyPrefix+id, &session); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}

	return &session, nil
}

// Update transitions a session to the updated status, replacing its line
// items when new ones are supplied, and re-persists it with a fresh TTL.
func (b *CheckoutBroker) Update(ctx context.Context, id string, items []domain.LineItem) (*domain.CheckoutSession, error) {
	session, err := b.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		session.Items = normalizeItems(items)
	}
	session.Status = domain.SessionStatusUpdated

	if err := b.store.Set(ctx, sessionKeyPrefix+id, session, b.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to persist checkout session: %w", err)
	}

	return session, nil
}

// Recover repopulates the backend cart from a persisted session: clear first,
// then add each line item, skipping items without a positive product id.
// Clear-then-add makes repeated recovery idempotent. Cart unavailability does
// not fail the call: the storefront visit proceeds with an empty cart.
func (b *CheckoutBroker) Recover(ctx context.Context, ref string) error {
	session, err := b.Get(ctx, ref)
	if err != nil {
		return err
	}

	if err := b.cart.Clear(ctx, ref); err != nil {
		log.Warn().Err(err).Str("session_id", ref).Msg("cart unavailable, skipping session recovery")
		return nil
	}

	for _, item := range session.Items {
		if item.ProductID <= 0 {
			continue
		}

		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		if err := b.cart.AddItem(ctx, ref, item.ProductID, quantity); err != nil {
			log.Warn().Err(err).
				Str("session_id", ref).
				Int64("product_id", item.ProductID).
				Msg("failed to add item during session recovery")
		}
	}

	log.Info().Str("session_id", ref).Msg("checkout session recovered into cart")

	return nil
}

// CheckoutURL returns the backend's native checkout URL carrying the session
// id as a recovery reference.
func (b *CheckoutBroker) CheckoutURL(id string) string {
	u, err := url.Parse(b.checkoutURL)
	if err != nil {
		return b.checkoutURL
	}

	q := u.Query()
	q.Set(SessionQueryParam, id)
	u.RawQuery = q.Encode()

	return u.String()
}

// normalizeItems defaults missing or invalid quantities to 1. Items are kept
// in submission order.
func normalizeItems(items []domain.LineItem) []domain.LineItem {
	normalized := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		normalized = append(normalized, item)
	}

	return normalized
}
