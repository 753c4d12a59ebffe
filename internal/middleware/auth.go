package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tube_accounts/internal/logging"
	"github.com/Skotchmaster/tube_accounts/internal/models"
	"github.com/Skotchmaster/tube_accounts/internal/tokens"
)

const (
	claimsKey = "access_claims"
	userKey   = "user"
)

type VerifyFunc func(token string) (*tokens.AccessClaims, error)

type LoadUserFunc func(ctx context.Context, id uuid.UUID) (*models.User, error)

// RequireAuth accepts an access token from the Authorization header or the
// accessToken cookie and puts the sanitized user into the echo context.
func RequireAuth(verify VerifyFunc, load LoadUserFunc) echo.MiddlewareFunc {
	jwtMw := echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:Authorization:Bearer ,cookie:accessToken",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return verify(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid access token")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMw(func(c echo.Context) error {
			claims, ok := c.Get(claimsKey).(*tokens.AccessClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid access token")
			}
			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid access token")
			}

			user, err := load(c.Request().Context(), id)
			if err != nil || user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid access token")
			}
			c.Set(userKey, user)
			req := c.Request()
			c.SetRequest(req.WithContext(logging.With(req.Context(), "user_id", user.ID)))
			return next(c)
		})
	}
}

// CurrentUser returns the user RequireAuth stored; nil outside authenticated routes.
func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func SetCurrentUser(c echo.Context, u *models.User) {
	c.Set(userKey, u)
}
