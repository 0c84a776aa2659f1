package service

import (
	"context"
	"time"

	"skillshare/internal/models"
	"skillshare/internal/repository"
	"skillshare/internal/validation"
)

// LearningPlanService handles learning plan lifecycle and queries.
type LearningPlanService struct {
	planRepo repository.LearningPlanRepository
	userRepo repository.UserRepository
}

type CreatePlanInput struct {
	UserID      uint
	Title       string
	Description string
	Topics      []string
	Resources   []string
	StartDate   time.Time
	EndDate     time.Time
}

type UpdatePlanInput struct {
	UserID      uint
	PlanID      uint
	Title       string
	Description string
	Topics      []string
	Resources   []string
	StartDate   time.Time
	EndDate     time.Time
	Status      models.PlanStatus
}

func NewLearningPlanService(planRepo repository.LearningPlanRepository, userRepo repository.UserRepository) *LearningPlanService {
	return &LearningPlanService{
		planRepo: planRepo,
		userRepo: userRepo,
	}
}

// CreatePlan validates topics, resources and dates. New plans always start
// in NOT_STARTED regardless of any client-supplied status.
func (s *LearningPlanService) CreatePlan(ctx context.Context, in CreatePlanInput) (*models.LearningPlan, error) {
	if in.Title == "" {
		return nil, models.NewBadRequestError("Title is required")
	}
	if err := validation.ValidateTopicsAndResources(in.Topics, in.Resources); err != nil {
		return nil, models.NewBadRequestError(err.Error())
	}
	if err := validation.ValidatePlanDates(in.StartDate, in.EndDate, true); err != nil {
		return nil, models.NewBadRequestError(err.Error())
	}

	plan := &models.LearningPlan{
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Topics:      in.Topics,
		Resources:   in.Resources,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      models.PlanNotStarted,
	}
	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return s.planRepo.GetByID(ctx, plan.ID)
}

func (s *LearningPlanService) GetPlan(ctx context.Context, planID uint) (*models.LearningPlan, error) {
	return s.planRepo.GetByID(ctx, planID)
}

func (s *LearningPlanService) GetUserPlans(ctx context.Context, userID uint, page, size int) (models.Page[*models.LearningPlan], error) {
	var empty models.Page[*models.LearningPlan]
	if _, err := s.userRepo.GetByID(ctx, userID, 0); err != nil {
		return empty, err
	}
	plans, err := s.planRepo.ListByUser(ctx, userID, size, page*size)
	if err != nil {
		return empty, err
	}
	total, err := s.planRepo.CountByUser(ctx, userID)
	if err != nil {
		return empty, err
	}
	return models.NewPage(plans, total, page, size), nil
}

func (s *LearningPlanService) GetUserPlansByStatus(ctx context.Context, userID uint, status models.PlanStatus) ([]*models.LearningPlan, error) {
	if !models.ValidPlanStatus(status) {
		return nil, models.NewBadRequestError("Invalid plan status")
	}
	if _, err := s.userRepo.GetByID(ctx, userID, 0); err != nil {
		return nil, err
	}
	return s.planRepo.ListByUserAndStatus(ctx, userID, status)
}

// GetActiveUserPlans returns in-progress plans whose end date has not passed.
func (s *LearningPlanService) GetActiveUserPlans(ctx context.Context, userID uint) ([]*models.LearningPlan, error) {
	if _, err := s.userRepo.GetByID(ctx, userID, 0); err != nil {
		return nil, err
	}
	return s.planRepo.ListActiveByUser(ctx, userID, time.Now())
}

func (s *LearningPlanService) CountUserPlansByStatus(ctx context.Context, userID uint, status models.PlanStatus) (int64, error) {
	if !models.ValidPlanStatus(status) {
		return 0, models.NewBadRequestError("Invalid plan status")
	}
	if _, err := s.userRepo.GetByID(ctx, userID, 0); err != nil {
		return 0, err
	}
	return s.planRepo.CountByUserAndStatus(ctx, userID, status)
}

func (s *LearningPlanService) SearchPlansByTopic(ctx context.Context, topic string) ([]*models.LearningPlan, error) {
	if topic == "" {
		return nil, models.NewBadRequestError("Topic is required")
	}
	return s.planRepo.SearchByTopic(ctx, topic)
}

// UpdatePlan is permitted only for the plan's owner. Unlike creation, the
// start date may lie in the past so existing plans can be amended.
func (s *LearningPlanService) UpdatePlan(ctx context.Context, in UpdatePlanInput) (*models.LearningPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != in.UserID {
		return nil, models.NewForbiddenError("You don't have permission to modify this learning plan")
	}

	if in.Title == "" {
		return nil, models.NewBadRequestError("Title is required")
	}
	if !models.ValidPlanStatus(in.Status) {
		return nil, models.NewBadRequestError("Invalid plan status")
	}
	if err := validation.ValidateTopicsAndResources(in.Topics, in.Resources); err != nil {
		return nil, models.NewBadRequestError(err.Error())
	}
	if err := validation.ValidatePlanDates(in.StartDate, in.EndDate, false); err != nil {
		return nil, models.NewBadRequestError(err.Error())
	}

	plan.Title = in.Title
	plan.Description = in.Description
	plan.Topics = in.Topics
	plan.Resources = in.Resources
	plan.StartDate = in.StartDate
	plan.EndDate = in.EndDate
	plan.Status = in.Status

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return s.planRepo.GetByID(ctx, plan.ID)
}

func (s *LearningPlanService) DeletePlan(ctx context.Context, userID, planID uint) error {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan.UserID != userID {
		return models.NewForbiddenError("You don't have permission to modify this learning plan")
	}
	return s.planRepo.Delete(ctx, planID)
}

// IsValidTopic and IsValidResource back the validate-topic/validate-resource
// endpoints used by clients for inline form validation.
func (s *LearningPlanService) IsValidTopic(topic string) bool {
	return validation.IsValidTopic(topic)
}

func (s *LearningPlanService) IsValidResource(resource string) bool {
	return validation.IsValidResource(resource)
}
