package models

// Comment belongs to exactly one post; list order is creation order
type Comment struct {
	ID       int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PostID   int64  `gorm:"not null;index:comments_ix_post;column:post_id" json:"post_id"`
	AuthorID int64  `gorm:"not null;column:author_id" json:"author_id"`
	Content  string `gorm:"type:text;not null;column:content" json:"content"`

	// Relationships
	Post   *Post    `gorm:"foreignKey:PostID;references:ID" json:"-"`
	Author *Profile `gorm:"foreignKey:AuthorID;references:ID" json:"-"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
