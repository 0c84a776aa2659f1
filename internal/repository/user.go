// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"skillshare/internal/cache"
	"skillshare/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and the follow graph.
type UserRepository interface {
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string, currentUserID uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]models.User, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	GetFollowing(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]models.User, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// applyUserDetails adds subqueries computing follower/following counts and
// whether the current user follows the selected row, in a single query.
func (r *userRepository) applyUserDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "users.*, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) as followers_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) as following_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM follows WHERE follows.followee_id = users.id AND follows.follower_id = ?) as is_following", currentUserID)
	}

	return db.Select(selectQuery + ", false as is_following")
}

func (r *userRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.User, error) {
	var user models.User

	fetch := func() error {
		if err := r.applyUserDetails(r.db.WithContext(ctx), currentUserID).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	var err error
	if currentUserID == 0 {
		err = cache.CacheAside(ctx, cache.UserKey(id), &user, cache.UserTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string, currentUserID uint) (*models.User, error) {
	var user models.User
	if err := r.applyUserDetails(r.db.WithContext(ctx), currentUserID).
		Where("username = ?", username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewBadRequestError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505, SQLite "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]models.User, error) {
	var users []models.User
	if err := r.applyUserDetails(r.db.WithContext(ctx), currentUserID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *userRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	follow := models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	if err := r.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewBadRequestError("Already following this user")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, followerID)
	cache.InvalidateUser(ctx, followeeID)
	return nil
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewBadRequestError("Not following this user")
	}
	cache.InvalidateUser(ctx, followerID)
	cache.InvalidateUser(ctx, followeeID)
	return nil
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) GetFollowers(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]models.User, error) {
	var users []models.User
	if err := r.applyUserDetails(r.db.WithContext(ctx), currentUserID).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *userRepository) GetFollowing(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]models.User, error) {
	var users []models.User
	if err := r.applyUserDetails(r.db.WithContext(ctx), currentUserID).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
