package models

import (
	"time"

	"gorm.io/gorm"
)

// PlanStatus represents the lifecycle state of a learning plan.
type PlanStatus string

const (
	// PlanNotStarted is the initial status of every new plan.
	PlanNotStarted PlanStatus = "NOT_STARTED"
	// PlanInProgress marks a plan the user is actively working through.
	PlanInProgress PlanStatus = "IN_PROGRESS"
	// PlanCompleted marks a finished plan.
	PlanCompleted PlanStatus = "COMPLETED"
	// PlanAbandoned marks a plan the user gave up on.
	PlanAbandoned PlanStatus = "ABANDONED"
)

// ValidPlanStatus reports whether s is one of the defined statuses.
func ValidPlanStatus(s PlanStatus) bool {
	switch s {
	case PlanNotStarted, PlanInProgress, PlanCompleted, PlanAbandoned:
		return true
	}
	return false
}

// Limits on learning plan composition.
const (
	MaxPlanTopics    = 10
	MaxPlanResources = 20
)

// LearningPlan represents a user's structured learning goal with ordered
// topics and resources and a start/end window.
type LearningPlan struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:varchar(1000)" json:"description"`
	Topics      []string       `gorm:"serializer:json" json:"topics"`
	Resources   []string       `gorm:"serializer:json" json:"resources"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Status      PlanStatus     `gorm:"type:varchar(20);default:'NOT_STARTED'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
