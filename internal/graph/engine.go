// Package graph owns follow/unfollow toggling and the derived
// follower/following sets of the social graph.
package graph

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/internal/policy"
	"github.com/flocknet/flock/pkg/logging"
)

// State is the relationship state after a toggle
type State string

const (
	// StateFollowing means the follow edge exists after the toggle
	StateFollowing State = "following"
	// StateNotFollowing means the follow edge is absent after the toggle
	StateNotFollowing State = "not-following"
)

// Engine toggles follow edges and derives relationship sets
type Engine struct {
	follows  *db.FollowRepository
	profiles *db.ProfileRepository
	logger   *zap.Logger
}

// NewEngine creates a new relationship engine
func NewEngine(repo *db.Repository) *Engine {
	return &Engine{
		follows:  db.NewFollowRepository(repo),
		profiles: db.NewProfileRepository(repo),
		logger:   logging.GetLogger().With(zap.String("component", "graph-engine")),
	}
}

// ToggleFollow flips the follow edge between the caller's profile and the
// target: absent edges are created, present edges are deleted. A duplicate-key
// failure on create means a concurrent toggle won the race; the edge exists,
// so the call converges to StateFollowing without erroring.
func (e *Engine) ToggleFollow(ctx context.Context, followerID, targetID int64) (State, error) {
	if followerID == targetID {
		return "", policy.NewValidationError("following", "you cannot follow yourself")
	}

	target, err := e.profiles.GetByID(ctx, targetID)
	if err != nil {
		return "", err
	}
	if target == nil {
		return "", policy.ErrNotFound
	}

	edge, err := e.follows.GetEdge(ctx, followerID, targetID)
	if err != nil {
		return "", err
	}

	if edge != nil {
		if err := e.follows.DeleteEdge(ctx, followerID, targetID); err != nil {
			return "", err
		}
		e.logger.Debug("follow edge removed",
			zap.Int64("follower", followerID),
			zap.Int64("following", targetID))
		return StateNotFollowing, nil
	}

	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: targetID,
		FollowedAt:  time.Now().UTC(),
	}
	if err := e.follows.Create(ctx, follow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return StateFollowing, nil
		}
		return "", err
	}
	e.logger.Debug("follow edge created",
		zap.Int64("follower", followerID),
		zap.Int64("following", targetID))
	return StateFollowing, nil
}

// Followers lists the profiles that follow the given profile
func (e *Engine) Followers(ctx context.Context, profileID int64) ([]*models.Profile, error) {
	ids, err := e.follows.FollowerIDs(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return e.profiles.GetByIDs(ctx, ids)
}

// Following lists the profiles the given profile follows
func (e *Engine) Following(ctx context.Context, profileID int64) ([]*models.Profile, error) {
	ids, err := e.follows.FollowingIDs(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return e.profiles.GetByIDs(ctx, ids)
}

// FollowingFeedFilter resolves the author IDs the caller follows, for use as
// a feed restriction predicate.
func (e *Engine) FollowingFeedFilter(ctx context.Context, callerProfileID int64) ([]int64, error) {
	return e.follows.FollowingIDs(ctx, callerProfileID)
}
