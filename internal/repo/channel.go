package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tube_accounts/internal/models"
)

const channelProfileQuery = `
SELECT
	u.id,
	u.full_name,
	u.username,
	u.email,
	u.avatar_url,
	u.cover_image_url,
	(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
	(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channel_subscribed_to_count,
	EXISTS (
		SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?
	) AS is_subscribed
FROM users u
WHERE u.username = ?
LIMIT 1`

// ChannelProfile returns nil, nil when no user has the username.
func (r *GormRepo) ChannelProfile(ctx context.Context, username string, requester uuid.UUID) (*models.ChannelProfile, error) {
	var rows []models.ChannelProfile
	err := r.DB.WithContext(ctx).
		Raw(channelProfileQuery, requester, NormalizeUsername(username)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *GormRepo) WatchHistory(ctx context.Context, userID uuid.UUID) ([]models.WatchHistoryEntry, error) {
	items := make([]models.WatchHistoryEntry, 0)
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("watched_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
