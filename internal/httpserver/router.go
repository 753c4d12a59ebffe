package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/tube_accounts/internal/middleware"
)

type Deps struct {
	Users       *UsersHTTP
	Auth        echo.MiddlewareFunc
	Ready       func(ctx context.Context) error
	MaxUploadMB int
	// StaticDir is served under /static when assets are kept on local disk.
	StaticDir string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	if d.StaticDir != "" {
		e.Static("/static", d.StaticDir)
	}

	users := e.Group("/api/v1/users")
	if d.MaxUploadMB > 0 {
		users.Use(echomw.BodyLimit(fmt.Sprintf("%dM", d.MaxUploadMB)))
	}

	users.POST("/register", d.Users.Register)
	users.POST("/login", d.Users.Login)
	users.POST("/refresh-token", d.Users.RefreshToken)

	private := users.Group("", d.Auth)

	private.POST("/logout", d.Users.Logout)
	private.POST("/change-password", d.Users.ChangePassword)
	private.GET("/current-user", d.Users.CurrentUser)
	private.PATCH("/update-account", d.Users.UpdateAccount)
	private.PATCH("/avatar", d.Users.UpdateAvatar)
	private.PATCH("/coverImage", d.Users.UpdateCoverImage)
	private.GET("/c/:username", d.Users.ChannelProfile)
	private.GET("/watch-history", d.Users.WatchHistory)
	private.GET("/history", d.Users.WatchHistory)
	private.GET("/search", d.Users.SearchChannels)
}

// NewEcho builds the echo instance with the error envelope, validator and
// the common middleware chain.
func NewEcho(base *slog.Logger, corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(middleware.RequestLogger(base))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     corsOrigins,
		AllowCredentials: true,
	}))
	return e
}
