package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxCommentLength caps comment content.
const MaxCommentLength = 500

// Comment represents a comment on a post. Comments are owned by their post
// and are removed with it.
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"type:varchar(500);not null" json:"content"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	PostID  uint   `gorm:"not null;index" json:"post_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`
	Post    Post   `gorm:"foreignKey:PostID" json:"-"`
	Edited  bool   `gorm:"default:false" json:"edited"`
	// CanEdit is true only for the comment author (computed per viewer)
	CanEdit bool `gorm:"-" json:"can_edit"`
	// CanDelete is true for the comment author and the post author (computed per viewer)
	CanDelete bool           `gorm:"-" json:"can_delete"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
