package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tube_accounts/internal/models"
	"github.com/Skotchmaster/tube_accounts/internal/search"
)

// RegisterRequest holds the text parts of the multipart registration form.
type RegisterRequest struct {
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email"    form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"    form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" form:"newPassword" validate:"required"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email"    form:"email"    validate:"omitempty,email"`
	Username string `json:"username" form:"username"`
}

// UserResponse is the sanitized user shape.
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatarUrl"`
	CoverImageURL string    `json:"coverImageUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UpdatedUserResponse is returned by update-account and carries the stored
// refresh token field next to the public ones.
type UpdatedUserResponse struct {
	UserResponse
	RefreshToken *string `json:"refreshToken"`
}

func NewUpdatedUserResponse(u *models.User) *UpdatedUserResponse {
	return &UpdatedUserResponse{UserResponse: *NewUserResponse(u), RefreshToken: u.RefreshToken}
}

type LoginResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

type TokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type SearchResponse struct {
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	Size     int                 `json:"size"`
	Channels []search.ChannelDoc `json:"channels"`
}

type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func NewEnvelope(status int, data any, message string) Envelope {
	return Envelope{StatusCode: status, Data: data, Message: message, Success: status < 400}
}

type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func NewErrorEnvelope(status int, message string, errs ...string) ErrorEnvelope {
	if errs == nil {
		errs = []string{}
	}
	return ErrorEnvelope{StatusCode: status, Message: message, Success: false, Errors: errs}
}
