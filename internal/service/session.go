package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tube_accounts/internal/events"
	"github.com/Skotchmaster/tube_accounts/internal/hash"
	"github.com/Skotchmaster/tube_accounts/internal/logging"
	"github.com/Skotchmaster/tube_accounts/internal/models"
	"github.com/Skotchmaster/tube_accounts/internal/repo"
)

type SessionService struct {
	Users  UserStore
	Tokens *TokenService
	Assets AssetStore
	Notify *Notifier
}

type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string
	// Local paths of the uploaded files; empty when not sent.
	AvatarPath     string
	CoverImagePath string
}

type LoginResult struct {
	User *models.User
	*TokenPair
}

func NewSessionService(users UserStore, tokens *TokenService, assets AssetStore, notify *Notifier) *SessionService {
	return &SessionService{Users: users, Tokens: tokens, Assets: assets, Notify: notify}
}

func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "session.register")

	for _, f := range []string{in.FullName, in.Email, in.Username, in.Password} {
		if strings.TrimSpace(f) == "" {
			return nil, badRequest("All fields are required")
		}
	}

	existing, err := s.Users.FindByLogin(ctx, in.Email, in.Username)
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		l.Error("register_failed", "status", 500, "reason", "cannot check existing user", "error", err)
		return nil, internal("Error while creating user", err)
	}
	if existing != nil {
		return nil, badRequest("User already exists")
	}

	if in.AvatarPath == "" {
		return nil, badRequest("Avatar file is required")
	}

	avatar, err := s.Assets.Upload(ctx, in.AvatarPath)
	if err != nil || avatar == nil || avatar.URL == "" {
		l.Error("register_failed", "status", 500, "reason", "avatar upload failed", "error", err)
		return nil, internal("Error while uploading avatar", err)
	}

	coverURL := ""
	if in.CoverImagePath != "" {
		cover, err := s.Assets.Upload(ctx, in.CoverImagePath)
		if err != nil || cover == nil {
			l.Warn("cover_upload_failed", "error", err)
		} else {
			coverURL = cover.URL
		}
	}

	user := &models.User{
		FullName:      in.FullName,
		Email:         in.Email,
		Username:      in.Username,
		Password:      in.Password,
		AvatarURL:     avatar.URL,
		CoverImageURL: coverURL,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, badRequest("User already exists")
		}
		l.Error("register_failed", "status", 500, "reason", "cannot create user", "error", err)
		return nil, internal("Error while creating user", err)
	}

	created, err := s.Users.FindPublicByID(ctx, user.ID)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "created user not found", "error", err)
		return nil, internal("Error while creating user", err)
	}

	s.Notify.userEvent(ctx, events.UserRegistered, created)
	s.Notify.indexChannel(ctx, created)

	l.Info("register_success", "user_id", created.ID)
	return created, nil
}

func (s *SessionService) Login(ctx context.Context, email, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.login")

	if strings.TrimSpace(email) == "" && strings.TrimSpace(username) == "" {
		return nil, badRequest("username or email is required")
	}

	user, err := s.Users.FindByLogin(ctx, email, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, notFound("User does not exist")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, internal("Something went wrong while logging in", err)
	}

	if !hash.CheckPassword(user.Password, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid password", "user_id", user.ID)
		return nil, unauthorized("Invalid user credentials", nil)
	}

	pair, err := s.Tokens.IssuePair(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign tokens", "error", err)
		return nil, internal("Something went wrong while generating refresh and access token", err)
	}
	if err := s.Tokens.PersistRefresh(ctx, user.ID, pair.RefreshToken); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot store refresh token", "error", err)
		return nil, err
	}

	loggedIn, err := s.Users.FindPublicByID(ctx, user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot reload user", "error", err)
		return nil, internal("Something went wrong while logging in", err)
	}

	s.Notify.userEvent(ctx, events.UserLoggedIn, loggedIn)
	return &LoginResult{User: loggedIn, TokenPair: pair}, nil
}

func (s *SessionService) Logout(ctx context.Context, user *models.User) error {
	if err := s.Tokens.Revoke(ctx, user.ID); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "status", 500, "user_id", user.ID, "error", err)
		return err
	}
	s.Notify.userEvent(ctx, events.UserLoggedOut, user)
	return nil
}

// Refresh exchanges a stored refresh token for a new pair; the old one stops working.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "session.refresh")

	user, err := s.Tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "error", err)
		return nil, err
	}

	pair, err := s.Tokens.Rotate(ctx, user, refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "user_id", user.ID, "error", err)
		return nil, err
	}
	return pair, nil
}

func (s *SessionService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "session.change_password")

	if oldPassword == "" || newPassword == "" {
		return badRequest("All fields are required")
	}

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return unauthorized("Invalid access token", err)
		}
		return internal("Something went wrong while changing password", err)
	}

	if !hash.CheckPassword(user.Password, oldPassword) {
		return badRequest("Invalid old password")
	}

	if err := s.Users.SetPassword(ctx, user, newPassword); err != nil {
		l.Error("change_password_failed", "status", 500, "user_id", userID, "error", err)
		return internal("Something went wrong while changing password", err)
	}

	s.Notify.userEvent(ctx, events.PasswordChanged, user)
	return nil
}
