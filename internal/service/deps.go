package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tube_accounts/internal/assets"
	"github.com/Skotchmaster/tube_accounts/internal/models"
	"github.com/Skotchmaster/tube_accounts/internal/search"
)

type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindPublicByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindWithoutPassword(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByLogin(ctx context.Context, email, username string) (*models.User, error)
	TakenByOther(ctx context.Context, id uuid.UUID, email, username string) (bool, error)
	Create(ctx context.Context, u *models.User) error
	SetPassword(ctx context.Context, u *models.User, password string) error
	PatchFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	SetRefreshDigest(ctx context.Context, id uuid.UUID, digest *string) error
	SwapRefreshDigest(ctx context.Context, id uuid.UUID, old, next string) error
	ChannelProfile(ctx context.Context, username string, requester uuid.UUID) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID uuid.UUID) ([]models.WatchHistoryEntry, error)
}

type AssetStore interface {
	Upload(ctx context.Context, localPath string) (*assets.UploadResult, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type ChannelIndex interface {
	IndexChannel(ctx context.Context, doc search.ChannelDoc) error
	SearchChannels(ctx context.Context, query string, from, size int) (int64, []search.ChannelDoc, error)
}
