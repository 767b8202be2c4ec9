// Package echo binds the UCP bridge services to HTTP.
package echo

import (
	goerrors "errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	ucp "github.com/Redemptive-Software/woocommerce-ucp"
	"github.com/Redemptive-Software/woocommerce-ucp/api"
	"github.com/Redemptive-Software/woocommerce-ucp/domain"
	"github.com/Redemptive-Software/woocommerce-ucp/errors"
)

// UCPAPI struct to hold dependencies.
type UCPAPI struct {
	auth      *ucp.AuthServer
	broker    *ucp.CheckoutBroker
	catalog   domain.Catalog
	discovery *ucp.Discovery
	principal domain.Principal
	// forwardURL is the backend's native checkout page the recovery
	// endpoint hands the visitor to once the cart is repopulated.
	forwardURL string
}

// NewUCPAPI initializes the UCP bridge API.
func NewUCPAPI(
	auth *ucp.AuthServer,
	broker *ucp.CheckoutBroker,
	catalog domain.Catalog,
	discovery *ucp.Discovery,
	principal domain.Principal,
	forwardURL string,
) *UCPAPI {
	return &UCPAPI{
		auth:       auth,
		broker:     broker,
		catalog:    catalog,
		discovery:  discovery,
		principal:  principal,
		forwardURL: forwardURL,
	}
}

// RegisterRoutes registers the UCP routes. Token exchange, authorization,
// catalog reads and discovery are public; everything under
// /ucp/v1/checkout-sessions is bearer-gated.
func (a *UCPAPI) RegisterRoutes(e *echo.Echo) {
	e.GET("/.well-known/ucp", a.ManifestHandler)
	e.GET("/.well-known/oauth-authorization-server", a.OAuthMetadataHandler)

	e.GET("/ucp/auth", a.AuthorizeHandler)
	e.GET("/checkout", a.RecoverHandler)
	e.GET("/healthz", a.HealthHandler)

	v1 := e.Group("/ucp/v1")
	v1.POST("/token", a.TokenHandler)
	v1.GET("/products/:id", a.ProductHandler)

	sessions := v1.Group("/checkout-sessions", BearerAuth(a.auth))
	sessions.POST("", a.CreateSessionHandler)
	sessions.GET("/:id", a.GetSessionHandler)
	sessions.PATCH("/:id", a.UpdateSessionHandler)
}

// AuthorizeHandler handles OAuth 2.0 authorization requests. It requires an
// already-authenticated principal; unauthenticated callers are redirected to
// the external login page. On success it redirects back to redirect_uri with
// the freshly minted code and the caller's opaque state.
func (a *UCPAPI) AuthorizeHandler(c echo.Context) error {
	clientID := c.QueryParam("client_id")
	redirectURI := c.QueryParam("redirect_uri")
	state := c.QueryParam("state")

	if redirectURI == "" {
		return c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("Missing redirect_uri parameter"))
	}

	userID, ok := a.principal.Current(c.Request())
	if !ok {
		return c.Redirect(http.StatusFound, a.principal.LoginURL(c.Request().RequestURI))
	}

	code, err := a.auth.Authorize(c.Request().Context(), userID, clientID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate authorization code")
		return c.JSON(http.StatusInternalServerError, errors.NewServerError("Failed to generate authorization code"))
	}

	target, err := url.Parse(redirectURI)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("Invalid redirect_uri parameter"))
	}

	q := target.Query()
	q.Set("code", code)
	if state != "" {
		// State is an opaque passthrough, never interpreted.
		q.Set("state", state)
	}
	target.RawQuery = q.Encode()

	return c.Redirect(http.StatusFound, target.String())
}

// tokenRequest accepts both form-encoded and JSON token requests.
type tokenRequest struct {
	Code string `form:"code" json:"code"`
}

// TokenHandler exchanges an authorization code for a bearer token. An
// unknown, expired or already-consumed code uniformly yields invalid_grant.
func (a *UCPAPI) TokenHandler(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("Malformed token request"))
	}

	tokenResponse, err := a.auth.Exchange(c.Request().Context(), req.Code)
	if err != nil {
		if oauthErr, ok := err.(*errors.OAuth2Error); ok {
			return c.JSON(http.StatusBadRequest, oauthErr)
		}

		log.Error().Err(err).Msg("Token generation failed")

		return c.JSON(http.StatusInternalServerError, errors.NewServerError("Failed to generate token"))
	}

	return c.JSON(http.StatusOK, tokenResponse)
}

// CreateSessionHandler creates a new checkout session from the submitted
// line items. Persistence is all-or-nothing.
func (a *UCPAPI) CreateSessionHandler(c echo.Context) error {
	var req api.CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("Malformed checkout session request"))
	}

	session, err := a.broker.Create(c.Request().Context(), toLineItems(req.Items))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create checkout session")
		return c.JSON(http.StatusInternalServerError, errors.NewRESTInternal("Failed to create session/cart"))
	}

	return c.JSON(http.StatusCreated, api.CheckoutSessionResponse{
		ID:          session.ID,
		Status:      session.Status,
		CheckoutURL: a.broker.CheckoutURL(session.ID),
	})
}

// GetSessionHandler returns the current view of a checkout session.
func (a *UCPAPI) GetSessionHandler(c echo.Context) error {
	session, err := a.broker.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return a.sessionError(c, err)
	}

	return c.JSON(http.StatusOK, api.CheckoutSessionResponse{
		ID:     session.ID,
		Status: session.Status,
	})
}

// UpdateSessionHandler transitions a session to the updated status,
// replacing its items when the body carries any.
func (a *UCPAPI) UpdateSessionHandler(c echo.Context) error {
	var req api.CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.NewInvalidRequest("Malformed checkout session request"))
	}

	session, err := a.broker.Update(c.Request().Context(), c.Param("id"), toLineItems(req.Items))
	if err != nil {
		return a.sessionError(c, err)
	}

	return c.JSON(http.StatusOK, api.CheckoutSessionResponse{
		ID:     session.ID,
		Status: session.Status,
	})
}

// RecoverHandler is the storefront entry point for a human arriving with a
// session reference: it repopulates the backend cart, then forwards to the
// native checkout page. Unknown references forward without touching the
// cart.
func (a *UCPAPI) RecoverHandler(c echo.Context) error {
	if ref := c.QueryParam(ucp.SessionQueryParam); ref != "" {
		if err := a.broker.Recover(c.Request().Context(), ref); err != nil {
			log.Warn().Err(err).Str("session_id", ref).Msg("checkout session recovery skipped")
		}
	}

	return c.Redirect(http.StatusFound, a.forwardURL)
}

// ProductHandler returns the catalog projection for an agent, decorated with
// UCP metadata. Catalog access is public: agents discover products before
// authenticating.
func (a *UCPAPI) ProductHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusNotFound, errors.NewRESTNotFound(errors.RESTProductNotFound, "Product not found"))
	}

	product, err := a.catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		if goerrors.Is(err, domain.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, errors.NewRESTNotFound(errors.RESTProductNotFound, "Product not found"))
		}

		log.Error().Err(err).Int64("product_id", id).Msg("Failed to load product")

		return c.JSON(http.StatusInternalServerError, errors.NewRESTInternal("Failed to load product"))
	}

	return c.JSON(http.StatusOK, api.ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Currency:    product.Currency,
		Images:      product.Images,
		UCPMetadata: api.ProductMetadata{
			CheckoutEndpoint: a.discovery.CheckoutEndpoint(),
			Capability:       "checkout",
		},
	})
}

// ManifestHandler serves the UCP capability manifest.
func (a *UCPAPI) ManifestHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, a.discovery.Manifest())
}

// OAuthMetadataHandler serves the OAuth authorization server metadata.
func (a *UCPAPI) OAuthMetadataHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, a.discovery.AuthServerMetadata())
}

// HealthHandler reports liveness.
func (a *UCPAPI) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (a *UCPAPI) sessionError(c echo.Context, err error) error {
	if goerrors.Is(err, ucp.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, errors.NewRESTNotFound(errors.RESTSessionNotFound, "Checkout session not found"))
	}

	log.Error().Err(err).Msg("Checkout session lookup failed")

	return c.JSON(http.StatusInternalServerError, errors.NewRESTInternal("Failed to load session"))
}

func toLineItems(items []api.LineItemRequest) []domain.LineItem {
	lineItems := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return lineItems
}
