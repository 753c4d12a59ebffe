package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/tube_accounts/internal/events"
	"github.com/Skotchmaster/tube_accounts/internal/logging"
	"github.com/Skotchmaster/tube_accounts/internal/models"
	"github.com/Skotchmaster/tube_accounts/internal/search"
)

// Notifier fans account changes out to Kafka and the channel index.
// Both sinks are optional and their failures never fail the request.
type Notifier struct {
	Events EventPublisher
	Topic  string
	Index  ChannelIndex
}

func (n *Notifier) userEvent(ctx context.Context, typ string, u *models.User) {
	if n == nil || n.Events == nil || u == nil {
		return
	}
	l := logging.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event := events.UserEvent{
		Type:     typ,
		UserID:   u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		At:       time.Now().UTC(),
	}
	if err := n.Events.PublishEvent(ctx, n.Topic, u.ID.String(), event); err != nil {
		l.Error("kafka_publish_failed", "event", typ, "error", err)
	}
}

func (n *Notifier) indexChannel(ctx context.Context, u *models.User) {
	if n == nil || n.Index == nil || u == nil {
		return
	}

	doc := search.ChannelDoc{
		ID:            u.ID.String(),
		Username:      u.Username,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
	}
	if err := n.Index.IndexChannel(ctx, doc); err != nil {
		logging.FromContext(ctx).Error("channel_index_failed", "user_id", doc.ID, "error", err)
	}
}
