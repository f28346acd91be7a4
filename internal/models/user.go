package models

import (
	"time"
)

// User represents an authenticated account
type User struct {
	ID             int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Email          string    `gorm:"type:varchar(254);not null;uniqueIndex:users_ux_email;column:email" json:"email"`
	Username       string    `gorm:"type:varchar(30);not null;uniqueIndex:users_ux_username;column:username" json:"username"`
	PasswordHash   string    `gorm:"type:varchar(128);not null;column:password_hash" json:"-"`
	ProfilePicture string    `gorm:"type:varchar(1024);not null;default:'';column:profile_picture" json:"profile_picture"`
	Bio            string    `gorm:"type:text;not null;default:'';column:bio" json:"bio"`
	CreatedAt      time.Time `gorm:"not null;column:created_at" json:"created_at"`

	// Relationships
	Profile *Profile `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
