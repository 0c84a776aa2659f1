// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	// ProviderLocal is an email/password account.
	ProviderLocal AuthProvider = "local"
	// ProviderGoogle is an account created or linked through Google OAuth2.
	ProviderGoogle AuthProvider = "google"
)

// User represents a member of the skill-sharing platform.
// A user tracks at most one auth provider; local accounts have an empty ProviderID.
type User struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Username       string       `gorm:"unique;not null" json:"username"`
	Email          string       `gorm:"unique;not null" json:"email"`
	Password       string       `gorm:"not null" json:"-"`
	Bio            string       `json:"bio"`
	ProfilePicture string       `json:"profile_picture"`
	Provider       AuthProvider `gorm:"type:varchar(20);default:'local'" json:"provider"`
	ProviderID     string       `json:"-"`
	// FollowersCount and FollowingCount are not persisted; computed at query time
	FollowersCount int64 `gorm:"->" json:"followers_count"`
	FollowingCount int64 `gorm:"->" json:"following_count"`
	// IsFollowing indicates whether the current requesting user follows this user (computed)
	IsFollowing bool           `gorm:"->" json:"is_following"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
