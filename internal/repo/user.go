package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tube_accounts/internal/hash"
	"github.com/Skotchmaster/tube_accounts/internal/models"
)

// Columns a sanitized read leaves out.
var privateColumns = []string{"password", "refresh_token"}

func (r *GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindPublicByID reads the user without the password hash and refresh digest.
func (r *GormRepo) FindPublicByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Omit(privateColumns...).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindWithoutPassword keeps the refresh digest, which the account update response exposes.
func (r *GormRepo) FindWithoutPassword(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Omit("password").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindByLogin matches on email OR username; blank arguments are ignored.
func (r *GormRepo) FindByLogin(ctx context.Context, email, username string) (*models.User, error) {
	conds := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if email = strings.TrimSpace(email); email != "" {
		conds = append(conds, "email = ?")
		args = append(args, email)
	}
	if username = NormalizeUsername(username); username != "" {
		conds = append(conds, "username = ?")
		args = append(args, username)
	}
	if len(conds) == 0 {
		return nil, ErrUserNotFound
	}

	var user models.User
	err := r.DB.WithContext(ctx).
		Where(strings.Join(conds, " OR "), args...).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// TakenByOther reports whether a user other than id already holds email or username.
func (r *GormRepo) TakenByOther(ctx context.Context, id uuid.UUID, email, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id <> ?", id).
		Where("email = ? OR username = ?", strings.TrimSpace(email), NormalizeUsername(username)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create validates the whole record, hashes the plaintext password and inserts it.
func (r *GormRepo) Create(ctx context.Context, u *models.User) error {
	u.Username = NormalizeUsername(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
	if err := u.Validate(); err != nil {
		return err
	}

	pwHash, err := hash.HashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = pwHash

	tx := r.DB.WithContext(ctx).
		Where("username = ? OR email = ?", u.Username, u.Email).
		FirstOrCreate(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

// SetPassword re-hashes the password and saves the full record after validation.
func (r *GormRepo) SetPassword(ctx context.Context, u *models.User, password string) error {
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = pwHash
	if err := u.Validate(); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Save(u).Error
}

// PatchFields updates only the given columns and skips record validation.
func (r *GormRepo) PatchFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetRefreshDigest overwrites the stored digest unconditionally; nil clears it.
func (r *GormRepo) SetRefreshDigest(ctx context.Context, id uuid.UUID, digest *string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("refresh_token", digest)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SwapRefreshDigest replaces the stored digest only while it still equals old.
func (r *GormRepo) SwapRefreshDigest(ctx context.Context, id uuid.UUID, old, next string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", id, old).
		Update("refresh_token", next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRefreshMismatch
	}
	return nil
}

func (r *GormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
