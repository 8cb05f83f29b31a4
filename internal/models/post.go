package models

import (
	"time"

	"gorm.io/gorm"
)

// PostCategory classifies a post for browsing and denormalized
// notification payloads.
type PostCategory string

const (
	CategoryTechnology PostCategory = "Technology"
	CategoryDesign     PostCategory = "Design"
	CategoryBusiness   PostCategory = "Business"
	CategoryLifestyle  PostCategory = "Lifestyle"
	CategoryOther      PostCategory = "Other"
)

// ValidCategory reports whether c is one of the allowed post categories.
func ValidCategory(c PostCategory) bool {
	switch c {
	case CategoryTechnology, CategoryDesign, CategoryBusiness, CategoryLifestyle, CategoryOther:
		return true
	}
	return false
}

// Post represents a published article. Content is sanitized HTML produced
// by the editor on the client.
type Post struct {
	ID       uint         `gorm:"primaryKey" json:"id"`
	Title    string       `json:"title"`
	Content  string       `gorm:"type:text;not null" json:"content"`
	Category PostCategory `gorm:"type:varchar(20);not null;default:'Other';index" json:"category"`
	UserID   uint         `gorm:"not null;index" json:"user_id"`
	User     User         `gorm:"foreignKey:UserID" json:"user"`
	// ImageURL is the public URL served by the image host; ImageStorageID is
	// the host-side handle used to cascade deletion.
	ImageURL       string `json:"image_url"`
	ImageStorageID string `json:"-"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`
	// TextRank is the store's native full-text rank for the current query.
	// Only populated by the indexed search retrieval; never persisted.
	TextRank float64 `gorm:"->" json:"-"`
	// RelevanceScore is the ranking engine's own additive heuristic, distinct
	// from TextRank. Exists only for the duration of one search request.
	RelevanceScore float64        `gorm:"-" json:"relevance_score,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like records that a user liked a post. The (UserID, PostID) pair is
// unique, giving the likes set add-to-set semantics.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is an append-only remark on a post. Comments are never reordered;
// chronological order is insertion order.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
