package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/models"
)

// Cascade deletions. The store has no ON DELETE CASCADE wiring; each routine
// removes dependents in dependency order inside one transaction so no
// orphaned rows survive a partial failure.

// DeletePostCascade removes a post's likes, comments and tag links, then the post.
func (r *PostRepository) DeletePostCascade(ctx context.Context, postID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deletePost(tx, postID)
	})
}

func deletePost(tx *gorm.DB, postID int64) error {
	if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", postID).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Post{}, postID).Error
}

// DeleteProfileCascade removes everything referencing a profile: its likes
// and comments, each of its posts (with the post cascade), follow edges in
// both directions, then the profile row itself.
func (r *ProfileRepository) DeleteProfileCascade(ctx context.Context, profileID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProfile(tx, profileID)
	})
}

func deleteProfile(tx *gorm.DB, profileID int64) error {
	if err := tx.Where("user_id = ?", profileID).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	if err := tx.Where("author_id = ?", profileID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}

	var postIDs []int64
	if err := tx.Model(&models.Post{}).
		Where("author_id = ?", profileID).
		Pluck("id", &postIDs).Error; err != nil {
		return err
	}
	for _, postID := range postIDs {
		if err := deletePost(tx, postID); err != nil {
			return err
		}
	}

	if err := tx.Where("follower_id = ? OR following_id = ?", profileID, profileID).
		Delete(&models.Follow{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Profile{}, profileID).Error
}

// DeleteUserCascade removes a user and, when present, its profile subtree.
func (r *UserRepository) DeleteUserCascade(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if err == nil {
			if err := deleteProfile(tx, profile.ID); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}
