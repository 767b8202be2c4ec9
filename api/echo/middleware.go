package echo

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	ucp "github.com/Redemptive-Software/woocommerce-ucp"
	"github.com/Redemptive-Software/woocommerce-ucp/errors"
)

// AuthUserIDKey is the echo context key holding the identity a validated
// bearer token is bound to.
const AuthUserIDKey = "auth-user-id"

const bearerPrefix = "Bearer "

// BearerAuth gates a route group behind bearer-token validation. A missing
// or malformed Authorization header, or a token that does not resolve,
// uniformly yields 401 before any handler runs; the root cause is never
// distinguished to the caller.
func BearerAuth(auth *ucp.AuthServer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, bearerPrefix) {
				return c.JSON(http.StatusUnauthorized, errors.NewRESTForbidden("Missing or invalid Authorization header"))
			}

			userID, err := auth.Validate(c.Request().Context(), strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				log.Debug().Err(err).Msg("bearer token validation failed")

				return c.JSON(http.StatusUnauthorized, errors.NewRESTForbidden("Invalid access token"))
			}

			c.Set(AuthUserIDKey, userID)

			return next(c)
		}
	}
}
