package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func setTokenCookies(c echo.Context, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	c.SetCookie(CreateCookie(accessCookie, access, "/", accessExp))
	c.SetCookie(CreateCookie(refreshCookie, refresh, "/", refreshExp))
}

func clearTokenCookies(c echo.Context) {
	c.SetCookie(DeleteCookie(accessCookie, "/"))
	c.SetCookie(DeleteCookie(refreshCookie, "/"))
}
