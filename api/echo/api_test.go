package echo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ucp "github.com/Redemptive-Software/woocommerce-ucp"
	"github.com/Redemptive-Software/woocommerce-ucp/api"
	"github.com/Redemptive-Software/woocommerce-ucp/cache"
	"github.com/Redemptive-Software/woocommerce-ucp/domain"
	"github.com/Redemptive-Software/woocommerce-ucp/errors"
	"github.com/Redemptive-Software/woocommerce-ucp/internal/auth"
)

const (
	testBaseURL    = "https://shop.example.com"
	testLoginURL   = "https://shop.example.com/login"
	testForwardURL = "https://shop.example.com/native-checkout"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Product), args.Error(1)
}

type MockCart struct {
	mock.Mock
}

func (m *MockCart) Clear(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockCart) AddItem(ctx context.Context, ref string, productID int64, quantity int) error {
	args := m.Called(ctx, ref, productID, quantity)
	return args.Error(0)
}

type testAPI struct {
	echo    *echo.Echo
	auth    *ucp.AuthServer
	catalog *MockCatalog
	cart    *MockCart
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	catalog := new(MockCatalog)
	cart := new(MockCart)

	authServer := ucp.NewAuthServer(store, 0, 0)
	broker := ucp.NewCheckoutBroker(store, cart, testBaseURL+"/checkout", time.Hour)
	discovery := ucp.NewDiscovery(testBaseURL)
	principal := auth.NewHeaderPrincipal("", testLoginURL)

	e := echo.New()
	NewUCPAPI(authServer, broker, catalog, discovery, principal, testForwardURL).RegisterRoutes(e)

	return &testAPI{
		echo:    e,
		auth:    authServer,
		catalog: catalog,
		cart:    cart,
	}
}

func (ta *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ta.echo.ServeHTTP(rec, req)

	return rec
}

// mintToken runs the code grant end to end and returns a usable bearer token.
func (ta *testAPI) mintToken(t *testing.T) string {
	t.Helper()

	code, err := ta.auth.Authorize(context.Background(), "user-1", "agent-1")
	require.NoError(t, err)

	token, err := ta.auth.Exchange(context.Background(), code)
	require.NoError(t, err)

	return token.AccessToken
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func TestBearerAuth(t *testing.T) {
	ta := newTestAPI(t)

	t.Run("missing header", func(t *testing.T) {
		rec := ta.do(httptest.NewRequest(http.MethodGet, "/ucp/v1/checkout-sessions/abc", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeJSON[errors.RESTError](t, rec)
		assert.Equal(t, errors.RESTForbidden, body.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ucp/v1/checkout-sessions/abc", nil)
		req.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")

		rec := ta.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ucp/v1/checkout-sessions/abc", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-real-token")

		rec := ta.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeJSON[errors.RESTError](t, rec)
		assert.Equal(t, errors.RESTForbidden, body.Code)
	})
}

func TestAuthorizeHandler(t *testing.T) {
	ta := newTestAPI(t)

	t.Run("missing redirect_uri", func(t *testing.T) {
		rec := ta.do(httptest.NewRequest(http.MethodGet, "/ucp/auth?client_id=agent-1", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeJSON[errors.OAuth2Error](t, rec)
		assert.Equal(t, errors.InvalidRequest, body.Code)
	})

	t.Run("unauthenticated visitor is sent to login", func(t *testing.T) {
		rec := ta.do(httptest.NewRequest(http.MethodGet, "/ucp/auth?client_id=agent-1&redirect_uri=https%3A%2F%2Fagent.example%2Fcb", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		location := rec.Header().Get(echo.HeaderLocation)
		assert.True(t, strings.HasPrefix(location, testLoginURL))
		assert.Contains(t, location, "return_to=")
	})

	t.Run("authenticated visitor gets code and state back", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ucp/auth?client_id=agent-1&redirect_uri=https%3A%2F%2Fagent.example%2Fcb&state=xyz", nil)
		req.Header.Set(auth.DefaultPrincipalHeader, "user-1")

		rec := ta.do(req)
		require.Equal(t, http.StatusFound, rec.Code)

		location, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
		require.NoError(t, err)
		assert.Equal(t, "agent.example", location.Host)
		assert.Equal(t, "xyz", location.Query().Get("state"))

		code := location.Query().Get("code")
		require.Len(t, code, 32)

		// The minted code is live: it can be exchanged once.
		_, err = ta.auth.Exchange(context.Background(), code)
		assert.NoError(t, err)
	})
}

func TestTokenHandler(t *testing.T) {
	ta := newTestAPI(t)

	t.Run("unknown code", func(t *testing.T) {
		form := url.Values{"code": {"bogus"}}
		req := httptest.NewRequest(http.MethodPost, "/ucp/v1/token", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

		rec := ta.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeJSON[errors.OAuth2Error](t, rec)
		assert.Equal(t, errors.InvalidGrant, body.Code)
	})

	t.Run("valid code yields a bearer token", func(t *testing.T) {
		code, err := ta.auth.Authorize(context.Background(), "user-1", "agent-1")
		require.NoError(t, err)

		form := url.Values{"code": {code}}
		req := httptest.NewRequest(http.MethodPost, "/ucp/v1/token", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

		rec := ta.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[api.TokenResponse](t, rec)
		assert.Equal(t, "Bearer", body.TokenType)
		assert.Equal(t, ucp.TokenScope, body.Scope)
		assert.Len(t, body.AccessToken, 64)
	})

	t.Run("code is single use over HTTP", func(t *testing.T) {
		code, err := ta.auth.Authorize(context.Background(), "user-1", "agent-1")
		require.NoError(t, err)

		form := url.Values{"code": {code}}

		first := ta.do(formPost("/ucp/v1/token", form))
		require.Equal(t, http.StatusOK, first.Code)

		second := ta.do(formPost("/ucp/v1/token", form))
		assert.Equal(t, http.StatusBadRequest, second.Code)
		body := decodeJSON[errors.OAuth2Error](t, second)
		assert.Equal(t, errors.InvalidGrant, body.Code)
	})
}

func formPost(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	return req
}

func TestSessionLifecycle(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.mintToken(t)

	authed := func(method, path, body string) *http.Request {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		return req
	}

	rec := ta.do(authed(http.MethodPost, "/ucp/v1/checkout-sessions", `{"items":[{"product_id":42,"quantity":2}]}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeJSON[api.CheckoutSessionResponse](t, rec)
	assert.Equal(t, domain.SessionStatusOpen, created.Status)
	assert.Contains(t, created.CheckoutURL, ucp.SessionQueryParam+"="+created.ID)

	t.Run("get", func(t *testing.T) {
		rec := ta.do(authed(http.MethodGet, "/ucp/v1/checkout-sessions/"+created.ID, ""))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[api.CheckoutSessionResponse](t, rec)
		assert.Equal(t, created.ID, body.ID)
		assert.Equal(t, domain.SessionStatusOpen, body.Status)
		assert.Empty(t, body.CheckoutURL)
	})

	t.Run("update", func(t *testing.T) {
		rec := ta.do(authed(http.MethodPatch, "/ucp/v1/checkout-sessions/"+created.ID, `{"items":[{"product_id":7}]}`))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[api.CheckoutSessionResponse](t, rec)
		assert.Equal(t, domain.SessionStatusUpdated, body.Status)
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := ta.do(authed(http.MethodGet, "/ucp/v1/checkout-sessions/missing", ""))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeJSON[errors.RESTError](t, rec)
		assert.Equal(t, errors.RESTSessionNotFound, body.Code)
	})
}

func TestRecoverHandler(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.mintToken(t)

	req := httptest.NewRequest(http.MethodPost, "/ucp/v1/checkout-sessions", strings.NewReader(`{"items":[{"product_id":42,"quantity":2}]}`))
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := ta.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeJSON[api.CheckoutSessionResponse](t, rec)

	t.Run("known session populates cart then forwards", func(t *testing.T) {
		ta.cart.On("Clear", mock.Anything, created.ID).Return(nil).Once()
		ta.cart.On("AddItem", mock.Anything, created.ID, int64(42), 2).Return(nil).Once()

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/checkout?"+ucp.SessionQueryParam+"="+created.ID, nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, testForwardURL, rec.Header().Get(echo.HeaderLocation))
		ta.cart.AssertExpectations(t)
	})

	t.Run("unknown session still forwards", func(t *testing.T) {
		rec := ta.do(httptest.NewRequest(http.MethodGet, "/checkout?"+ucp.SessionQueryParam+"=missing", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, testForwardURL, rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("no reference forwards untouched", func(t *testing.T) {
		rec := ta.do(httptest.NewRequest(http.MethodGet, "/checkout", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, testForwardURL, rec.Header().Get(echo.HeaderLocation))
	})
}

func TestProductHandler(t *testing.T) {
	ta := newTestAPI(t)

	t.Run("found", func(t *testing.T) {
		ta.catalog.On("GetProduct", mock.Anything, int64(42)).Return(&domain.Product{
			ID:       42,
			Name:     "Mechanical Keyboard",
			Price:    "129.00",
			Currency: "USD",
		}, nil).Once()

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/ucp/v1/products/42", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[api.ProductResponse](t, rec)
		assert.Equal(t, int64(42), body.ID)
		assert.Equal(t, "checkout", body.UCPMetadata.Capability)
		assert.Equal(t, testBaseURL+"/ucp/v1/checkout-sessions", body.UCPMetadata.CheckoutEndpoint)
	})

	t.Run("not found", func(t *testing.T) {
		ta.catalog.On("GetProduct", mock.Anything, int64(99)).Return(nil, domain.ErrProductNotFound).Once()

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/ucp/v1/products/99", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeJSON[errors.RESTError](t, rec)
		assert.Equal(t, errors.RESTProductNotFound, body.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		rec := ta.do(httptest.NewRequest(http.MethodGet, "/ucp/v1/products/not-a-number", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDiscoveryEndpoints(t *testing.T) {
	ta := newTestAPI(t)

	t.Run("manifest", func(t *testing.T) {
		rec := ta.do(httptest.NewRequest(http.MethodGet, "/.well-known/ucp", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[api.Manifest](t, rec)
		assert.Equal(t, ucp.ManifestVersion, body.Version)
		assert.Contains(t, body.Capabilities, "checkout")
	})

	t.Run("oauth metadata", func(t *testing.T) {
		rec := ta.do(httptest.NewRequest(http.MethodGet, "/.well-known/oauth-authorization-server", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[api.AuthServerMetadata](t, rec)
		assert.Equal(t, testBaseURL, body.Issuer)
		assert.Equal(t, testBaseURL+"/ucp/v1/token", body.TokenEndpoint)
	})
}

func TestHealthHandler(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
