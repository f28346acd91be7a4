package models

import (
	"time"
)

// Profile represents a user's public social profile
type Profile struct {
	ID             int64      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID         int64      `gorm:"not null;uniqueIndex:profiles_ux_user;column:user_id" json:"user_id"`
	Username       string     `gorm:"type:varchar(50);not null;uniqueIndex:profiles_ux_username;column:username" json:"username"`
	FirstName      string     `gorm:"type:varchar(50);not null;default:'';column:first_name" json:"first_name"`
	LastName       string     `gorm:"type:varchar(50);not null;default:'';column:last_name" json:"last_name"`
	BirthDate      *time.Time `gorm:"column:birth_date" json:"birth_date,omitempty"`
	ProfilePicture string     `gorm:"type:varchar(1024);not null;default:'';column:profile_picture" json:"profile_picture"`
	Bio            string     `gorm:"type:text;not null;default:'';column:bio" json:"bio"`

	// Relationships
	User  *User  `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Posts []Post `gorm:"foreignKey:AuthorID;references:ID" json:"-"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}
