package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidUser = errors.New("invalid user")

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Username      string    `gorm:"uniqueIndex;not null"          json:"username"`
	Email         string    `gorm:"uniqueIndex;not null"          json:"email"`
	FullName      string    `gorm:"not null;index"                json:"fullName"`
	Password      string    `gorm:"not null"                      json:"-"`
	AvatarURL     string    `gorm:"not null"                      json:"avatarUrl"`
	CoverImageURL string    `gorm:"not null;default:''"           json:"coverImageUrl"`
	RefreshToken  *string   `gorm:"index"                         json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Validate checks the fields required for a full write of the record.
func (u *User) Validate() error {
	switch {
	case strings.TrimSpace(u.Username) == "":
		return errors.Join(ErrInvalidUser, errors.New("username is required"))
	case strings.TrimSpace(u.Email) == "":
		return errors.Join(ErrInvalidUser, errors.New("email is required"))
	case strings.TrimSpace(u.FullName) == "":
		return errors.Join(ErrInvalidUser, errors.New("full name is required"))
	case u.Password == "":
		return errors.Join(ErrInvalidUser, errors.New("password is required"))
	case u.AvatarURL == "":
		return errors.Join(ErrInvalidUser, errors.New("avatar is required"))
	}
	return nil
}

type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;index"   json:"subscriberId"`
	ChannelID    uuid.UUID `gorm:"type:uuid;not null;index"   json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type WatchHistoryEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"    json:"userId"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null"          json:"videoId"`
	WatchedAt time.Time `gorm:"not null;index"              json:"watchedAt"`
}

func (WatchHistoryEntry) TableName() string { return "watch_history" }

func (w *WatchHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// ChannelProfile is the row shape produced by the channel aggregation query.
type ChannelProfile struct {
	ID                       uuid.UUID `json:"id"`
	FullName                 string    `json:"fullName"`
	Username                 string    `json:"username"`
	Email                    string    `json:"email"`
	AvatarURL                string    `json:"avatarUrl"`
	CoverImageURL            string    `json:"coverImageUrl"`
	SubscribersCount         int64     `json:"subscribersCount"`
	ChannelSubscribedToCount int64     `json:"channelSubscribedToCount"`
	IsSubscribed             bool      `json:"isSubscribed"`
}
