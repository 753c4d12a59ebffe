package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tube_accounts/internal/assets"
	"github.com/Skotchmaster/tube_accounts/internal/events"
	"github.com/Skotchmaster/tube_accounts/internal/logging"
	"github.com/Skotchmaster/tube_accounts/internal/models"
	"github.com/Skotchmaster/tube_accounts/internal/repo"
	"github.com/Skotchmaster/tube_accounts/internal/search"
)

type ProfileService struct {
	Users  UserStore
	Assets AssetStore
	Notify *Notifier
}

type UpdateAccountInput struct {
	FullName string
	Email    string
	Username string
}

func NewProfileService(users UserStore, assets AssetStore, notify *Notifier) *ProfileService {
	return &ProfileService{Users: users, Assets: assets, Notify: notify}
}

func (s *ProfileService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Users.FindPublicByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, unauthorized("Invalid access token", err)
		}
		return nil, internal("Something went wrong while fetching user", err)
	}
	return user, nil
}

// UpdateAccount patches the profile fields. The returned record keeps the
// stored refresh token field and only drops the password.
func (s *ProfileService) UpdateAccount(ctx context.Context, userID uuid.UUID, in UpdateAccountInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "profile.update_account")

	fullName := strings.TrimSpace(in.FullName)
	username := repo.NormalizeUsername(in.Username)
	email := strings.TrimSpace(in.Email)
	if fullName == "" || username == "" {
		return nil, badRequest("All fields are required")
	}

	taken, err := s.Users.TakenByOther(ctx, userID, email, username)
	if err != nil {
		l.Error("update_account_failed", "status", 500, "error", err)
		return nil, internal("Something went wrong while updating account", err)
	}
	if taken {
		return nil, badRequest("User already exists")
	}

	fields := map[string]any{"full_name": fullName, "username": username}
	if email != "" {
		fields["email"] = email
	}
	if err := s.Users.PatchFields(ctx, userID, fields); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, unauthorized("Invalid access token", err)
		}
		l.Error("update_account_failed", "status", 500, "error", err)
		return nil, internal("Something went wrong while updating account", err)
	}

	user, err := s.Users.FindWithoutPassword(ctx, userID)
	if err != nil {
		l.Error("update_account_failed", "status", 500, "reason", "cannot reload user", "error", err)
		return nil, internal("Something went wrong while updating account", err)
	}

	s.Notify.userEvent(ctx, events.UserUpdated, user)
	s.Notify.indexChannel(ctx, user)
	return user, nil
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*assets.UploadResult, error) {
	return s.replaceImage(ctx, userID, localPath, "avatar_url", "Avatar")
}

func (s *ProfileService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*assets.UploadResult, error) {
	return s.replaceImage(ctx, userID, localPath, "cover_image_url", "Cover image")
}

// replaceImage returns the raw upload result; a failed column patch is only logged.
func (s *ProfileService) replaceImage(ctx context.Context, userID uuid.UUID, localPath, column, label string) (*assets.UploadResult, error) {
	l := logging.FromContext(ctx).With("svc", "profile.update_image", "column", column)

	if localPath == "" {
		return nil, badRequest(label + " file is missing")
	}

	res, err := s.Assets.Upload(ctx, localPath)
	if err != nil || res == nil || res.URL == "" {
		l.Error("update_image_failed", "status", 500, "reason", "upload failed", "error", err)
		return nil, internal("Error while uploading "+strings.ToLower(label), err)
	}

	if err := s.Users.PatchFields(ctx, userID, map[string]any{column: res.URL}); err != nil {
		l.Error("update_image_failed", "status", 500, "reason", "cannot patch user", "error", err)
		return res, nil
	}

	if user, err := s.Users.FindPublicByID(ctx, userID); err == nil {
		s.Notify.userEvent(ctx, events.UserUpdated, user)
		s.Notify.indexChannel(ctx, user)
	}
	return res, nil
}

func (s *ProfileService) ChannelProfile(ctx context.Context, username string, requester uuid.UUID) (*models.ChannelProfile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, badRequest("username is missing")
	}

	profile, err := s.Users.ChannelProfile(ctx, username, requester)
	if err != nil {
		logging.FromContext(ctx).Error("channel_profile_failed", "status", 500, "username", username, "error", err)
		return nil, internal("Something went wrong while fetching channel", err)
	}
	if profile == nil {
		return nil, notFound("channel does not exist")
	}
	return profile, nil
}

func (s *ProfileService) WatchHistory(ctx context.Context, userID uuid.UUID) ([]models.WatchHistoryEntry, error) {
	items, err := s.Users.WatchHistory(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("watch_history_failed", "status", 500, "user_id", userID, "error", err)
		return nil, internal("Something went wrong while fetching watch history", err)
	}
	return items, nil
}

func (s *ProfileService) SearchChannels(ctx context.Context, query string, from, size int) (int64, []search.ChannelDoc, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, badRequest("search query is required")
	}
	if s.Notify == nil || s.Notify.Index == nil {
		return 0, nil, internal("Channel search is unavailable", nil)
	}

	total, channels, err := s.Notify.Index.SearchChannels(ctx, query, from, size)
	if err != nil {
		logging.FromContext(ctx).Error("search_channels_failed", "status", 500, "query", query, "error", err)
		return 0, nil, internal("Channel search is unavailable", err)
	}
	return total, channels, nil
}
