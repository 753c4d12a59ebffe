package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tube_accounts/internal/logging"
	"github.com/Skotchmaster/tube_accounts/internal/middleware"
	"github.com/Skotchmaster/tube_accounts/internal/service"
	"github.com/Skotchmaster/tube_accounts/internal/transport"
	"github.com/Skotchmaster/tube_accounts/internal/util"
)

type UsersHTTP struct {
	Session *service.SessionService
	Profile *service.ProfileService
	Uploads *TempUploads
}

func (h *UsersHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	avatar, err := h.Uploads.Save(c, "avatar")
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot stage avatar", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error while uploading avatar")
	}
	cover, err := h.Uploads.Save(c, "coverImage")
	if err != nil {
		l.Warn("cover_stage_failed", "error", err)
		cover = ""
	}
	defer h.Uploads.Discard(avatar, cover)

	user, err := h.Session.Register(ctx, service.RegisterInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		AvatarPath:     avatar,
		CoverImagePath: cover,
	})
	if err != nil {
		return fail(l, "register_failed", err)
	}

	return c.JSON(http.StatusCreated, transport.NewEnvelope(http.StatusCreated, transport.NewUserResponse(user), "User registered successfully"))
}

func (h *UsersHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Session.Login(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	setTokenCookies(c, res.AccessToken, res.AccessExp, res.RefreshToken, res.RefreshExp)
	l.Info("login_successful", "user_id", res.User.ID)

	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK, transport.LoginResponse{
		User:         transport.NewUserResponse(res.User),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, "User logged In Successfully"))
}

func (h *UsersHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.logout")

	if err := h.Session.Logout(ctx, middleware.CurrentUser(c)); err != nil {
		return fail(l, "logout_failed", err)
	}

	clearTokenCookies(c)
	l.Info("successful_logout")
	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK, struct{}{}, "User logged Out"))
}

func (h *UsersHTTP) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.refresh_token")

	token := ""
	if ck, err := c.Cookie(refreshCookie); err == nil {
		token = ck.Value
	}
	if token == "" {
		var req transport.RefreshRequest
		if err := c.Bind(&req); err != nil {
			l.Warn("refresh_failed", "status", 400, "reason", "invalid body", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		token = req.RefreshToken
	}

	pair, err := h.Session.Refresh(ctx, token)
	if err != nil {
		return fail(l, "refresh_failed", err)
	}

	setTokenCookies(c, pair.AccessToken, pair.AccessExp, pair.RefreshToken, pair.RefreshExp)
	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK, transport.TokensResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed"))
}

func (h *UsersHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.change_password")

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("change_password_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user := middleware.CurrentUser(c)
	if err := h.Session.ChangePassword(ctx, user.ID, req.OldPassword, req.NewPassword); err != nil {
		return fail(l, "change_password_failed", err)
	}

	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK, struct{}{}, "Password changed successfully"))
}

func (h *UsersHTTP) CurrentUser(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK,
		transport.NewUserResponse(middleware.CurrentUser(c)), "User fetched successfully"))
}

func (h *UsersHTTP) UpdateAccount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update_account")

	var req transport.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_account_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.Profile.UpdateAccount(ctx, middleware.CurrentUser(c).ID, service.UpdateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
	})
	if err != nil {
		return fail(l, "update_account_failed", err)
	}

	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK, transport.NewUpdatedUserResponse(user), "Account details updated successfully"))
}

func (h *UsersHTTP) UpdateAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update_avatar")

	path, err := h.Uploads.Save(c, "avatar")
	if err != nil {
		l.Error("update_avatar_failed", "status", 500, "reason", "cannot stage file", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error while uploading avatar")
	}
	defer h.Uploads.Discard(path)

	res, err := h.Profile.UpdateAvatar(ctx, middleware.CurrentUser(c).ID, path)
	if err != nil {
		return fail(l, "update_avatar_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK, res, "Avatar image updated successfully"))
}

func (h *UsersHTTP) UpdateCoverImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update_cover_image")

	path, err := h.Uploads.Save(c, "coverImage")
	if err != nil {
		l.Error("update_cover_failed", "status", 500, "reason", "cannot stage file", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error while uploading cover image")
	}
	defer h.Uploads.Discard(path)

	res, err := h.Profile.UpdateCoverImage(ctx, middleware.CurrentUser(c).ID, path)
	if err != nil {
		return fail(l, "update_cover_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK, res, "Cover image updated successfully"))
}

func (h *UsersHTTP) ChannelProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.channel_profile")

	profile, err := h.Profile.ChannelProfile(ctx, c.Param("username"), middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(l, "channel_profile_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK, profile, "User channel fetched successfully"))
}

func (h *UsersHTTP) WatchHistory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.watch_history")

	items, err := h.Profile.WatchHistory(ctx, middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(l, "watch_history_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK, items, "Watch history fetched successfully"))
}

func (h *UsersHTTP) SearchChannels(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.search_channels")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, channels, err := h.Profile.SearchChannels(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_channels_failed", err)
	}

	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, transport.NewEnvelope(http.StatusOK, transport.SearchResponse{
		Total:    total,
		Page:     page,
		Size:     limit,
		Channels: channels,
	}, "Channels fetched successfully"))
}

// fail logs a flow error at a level matching its status and converts it for echo.
func fail(l *slog.Logger, event string, err error) error {
	he := toHTTPError(err)
	if he.Code >= http.StatusInternalServerError {
		l.Error(event, "status", he.Code, "reason", he.Message, "error", err)
	} else {
		l.Warn(event, "status", he.Code, "reason", he.Message, "error", err)
	}
	return he
}
