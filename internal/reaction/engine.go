// Package reaction owns like/unlike toggling per (post, profile) pair and
// the derived like counts.
package reaction

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/internal/policy"
	"github.com/flocknet/flock/pkg/logging"
)

// Engine toggles like edges and derives live counts
type Engine struct {
	likes  *db.LikeRepository
	posts  *db.PostRepository
	logger *zap.Logger
}

// NewEngine creates a new reaction engine
func NewEngine(repo *db.Repository) *Engine {
	return &Engine{
		likes:  db.NewLikeRepository(repo),
		posts:  db.NewPostRepository(repo),
		logger: logging.GetLogger().With(zap.String("component", "reaction-engine")),
	}
}

// ToggleLike flips the like edge for (post, profile) and returns the
// resulting state together with the post's live like count. A duplicate-key
// failure on create means a concurrent toggle already created the edge; the
// losing writer is treated as a successful no-op.
func (e *Engine) ToggleLike(ctx context.Context, postID, profileID int64) (bool, int64, error) {
	post, err := e.posts.GetByID(ctx, postID)
	if err != nil {
		return false, 0, err
	}
	if post == nil {
		return false, 0, policy.ErrNotFound
	}

	edge, err := e.likes.GetEdge(ctx, postID, profileID)
	if err != nil {
		return false, 0, err
	}

	liked := false
	if edge != nil {
		if err := e.likes.DeleteEdge(ctx, postID, profileID); err != nil {
			return false, 0, err
		}
	} else {
		like := &models.Like{PostID: postID, UserID: profileID}
		if err := e.likes.Create(ctx, like); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, 0, err
		}
		liked = true
	}

	count, err := e.likes.CountByPost(ctx, postID)
	if err != nil {
		return false, 0, err
	}

	e.logger.Debug("like toggled",
		zap.Int64("post", postID),
		zap.Int64("profile", profileID),
		zap.Bool("liked", liked),
		zap.Int64("count", count))
	return liked, count, nil
}

// LikeCount returns the live like count for a post, never memoized
func (e *Engine) LikeCount(ctx context.Context, postID int64) (int64, error) {
	return e.likes.CountByPost(ctx, postID)
}

// PostsLikedBy lists the posts a profile has a live like on
func (e *Engine) PostsLikedBy(ctx context.Context, profileID int64) ([]*models.Post, error) {
	ids, err := e.likes.PostIDsByUser(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	return e.posts.List(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.id IN ?", ids)
	})
}
