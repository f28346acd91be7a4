package view

import (
	"context"
	"time"

	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/models"
)

// ProfileListItem is the minimal profile projection
type ProfileListItem struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio,omitempty"`
}

// ProfileDetail is the full profile projection with live relationship counts
type ProfileDetail struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	Followers      int64      `json:"followers"`
	Following      int64      `json:"following"`
}

// ProfileMapper loads the derived fields a profile projection needs
type ProfileMapper struct {
	follows *db.FollowRepository
}

// NewProfileMapper creates a new profile mapper
func NewProfileMapper(repo *db.Repository) *ProfileMapper {
	return &ProfileMapper{follows: db.NewFollowRepository(repo)}
}

// ListItems projects profiles into the list shape
func (m *ProfileMapper) ListItems(profiles []*models.Profile) []ProfileListItem {
	items := make([]ProfileListItem, 0, len(profiles))
	for _, profile := range profiles {
		items = append(items, ProfileListItem{
			ID:        profile.ID,
			Username:  profile.Username,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Bio:       profile.Bio,
		})
	}
	return items
}

// Detail projects a profile with its live follower/following counts
func (m *ProfileMapper) Detail(ctx context.Context, profile *models.Profile) (*ProfileDetail, error) {
	followers, err := m.follows.CountFollowers(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	following, err := m.follows.CountFollowing(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileDetail{
		ID:             profile.ID,
		UserID:         profile.UserID,
		Username:       profile.Username,
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		BirthDate:      profile.BirthDate,
		ProfilePicture: profile.ProfilePicture,
		Bio:            profile.Bio,
		Followers:      followers,
		Following:      following,
	}, nil
}
