package models

import (
	"time"
)

// Post represents an authored post
type Post struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	AuthorID  int64     `gorm:"not null;index:posts_ix_author;column:author_id" json:"author_id"`
	Content   string    `gorm:"type:text;not null;column:content" json:"content"`
	CreatedAt time.Time `gorm:"not null;column:created_at" json:"created_at"`
	Media     string    `gorm:"type:varchar(1024);not null;default:'';column:media" json:"media"`

	// Relationships
	Author   *Profile  `gorm:"foreignKey:AuthorID;references:ID" json:"-"`
	Tags     []Tag     `gorm:"many2many:post_tags;" json:"-"`
	Comments []Comment `gorm:"foreignKey:PostID;references:ID" json:"-"`
	Likes    []Like    `gorm:"foreignKey:PostID;references:ID" json:"-"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}
