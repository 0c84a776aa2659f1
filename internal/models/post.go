package models

import (
	"time"

	"gorm.io/gorm"
)

// MediaType distinguishes what kind of media a post carries.
type MediaType string

const (
	// MediaTypePhoto marks posts with image attachments.
	MediaTypePhoto MediaType = "PHOTO"
	// MediaTypeVideo marks posts with video attachments.
	MediaTypeVideo MediaType = "VIDEO"
)

// MaxMediaFiles is the upper bound on attachments per post.
const MaxMediaFiles = 3

// Post represents a skill-sharing post.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	Description string    `gorm:"type:text;not null" json:"description"`
	MediaURLs   []string  `gorm:"serializer:json" json:"media_urls"`
	MediaType   MediaType `gorm:"type:varchar(10)" json:"media_type"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
