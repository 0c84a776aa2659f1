package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"skillshare/internal/models"

	"gorm.io/gorm"
)

// LearningPlanRepository defines persistence operations for learning plans.
type LearningPlanRepository interface {
	Create(ctx context.Context, plan *models.LearningPlan) error
	GetByID(ctx context.Context, id uint) (*models.LearningPlan, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.LearningPlan, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	ListByUserAndStatus(ctx context.Context, userID uint, status models.PlanStatus) ([]*models.LearningPlan, error)
	CountByUserAndStatus(ctx context.Context, userID uint, status models.PlanStatus) (int64, error)
	ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]*models.LearningPlan, error)
	SearchByTopic(ctx context.Context, topic string) ([]*models.LearningPlan, error)
	Update(ctx context.Context, plan *models.LearningPlan) error
	Delete(ctx context.Context, id uint) error
}

type learningPlanRepository struct {
	db *gorm.DB
}

// NewLearningPlanRepository creates a new LearningPlanRepository
func NewLearningPlanRepository(db *gorm.DB) LearningPlanRepository {
	return &learningPlanRepository{db: db}
}

func (r *learningPlanRepository) Create(ctx context.Context, plan *models.LearningPlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *learningPlanRepository) GetByID(ctx context.Context, id uint) (*models.LearningPlan, error) {
	var plan models.LearningPlan
	if err := r.db.WithContext(ctx).Preload("User").First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Learning Plan", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &plan, nil
}

func (r *learningPlanRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.LearningPlan, error) {
	var plans []*models.LearningPlan
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&plans).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return plans, nil
}

func (r *learningPlanRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LearningPlan{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *learningPlanRepository) ListByUserAndStatus(ctx context.Context, userID uint, status models.PlanStatus) ([]*models.LearningPlan, error) {
	var plans []*models.LearningPlan
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? AND status = ?", userID, status).
		Order("start_date ASC").
		Find(&plans).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return plans, nil
}

func (r *learningPlanRepository) CountByUserAndStatus(ctx context.Context, userID uint, status models.PlanStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LearningPlan{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// ListActiveByUser returns in-progress plans whose end date has not passed.
func (r *learningPlanRepository) ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]*models.LearningPlan, error) {
	var plans []*models.LearningPlan
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? AND status = ? AND end_date > ?", userID, models.PlanInProgress, now).
		Order("start_date ASC").
		Find(&plans).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return plans, nil
}

// SearchByTopic matches against the serialized topics list, case-insensitive.
func (r *learningPlanRepository) SearchByTopic(ctx context.Context, topic string) ([]*models.LearningPlan, error) {
	var plans []*models.LearningPlan
	like := "%" + strings.ToLower(topic) + "%"
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("LOWER(topics) LIKE ?", like).
		Order("created_at DESC").
		Find(&plans).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return plans, nil
}

func (r *learningPlanRepository) Update(ctx context.Context, plan *models.LearningPlan) error {
	if err := r.db.WithContext(ctx).Save(plan).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *learningPlanRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.LearningPlan{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
