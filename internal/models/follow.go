package models

import (
	"time"
)

// Follow is a directed (follower, following) edge between profiles.
// follower != following is enforced before storage; the composite unique
// index resolves concurrent toggle races.
type Follow struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	FollowerID  int64     `gorm:"not null;uniqueIndex:follows_ux_edge;column:follower_id" json:"follower_id"`
	FollowingID int64     `gorm:"not null;uniqueIndex:follows_ux_edge;column:following_id" json:"following_id"`
	FollowedAt  time.Time `gorm:"not null;column:followed_at" json:"followed_at"`

	// Relationships
	Follower  *Profile `gorm:"foreignKey:FollowerID;references:ID" json:"-"`
	Following *Profile `gorm:"foreignKey:FollowingID;references:ID" json:"-"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "follows"
}
