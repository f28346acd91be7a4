package models

// Like is a (post, profile) edge; existence is the "liked" state.
// The composite unique index is what resolves concurrent toggle races.
type Like struct {
	ID     int64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PostID int64 `gorm:"not null;uniqueIndex:likes_ux_post_user;column:post_id" json:"post_id"`
	UserID int64 `gorm:"not null;uniqueIndex:likes_ux_post_user;column:user_id" json:"user_id"`

	// Relationships
	Post *Post    `gorm:"foreignKey:PostID;references:ID" json:"-"`
	User *Profile `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "likes"
}
