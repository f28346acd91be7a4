package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/internal/policy"
)

// Direct record access surface. Edges created here carry implicit ownership:
// the caller-side field is always the caller's own profile.

// listTags lists all tags
func (r *Router) listTags(c *gin.Context) {
	tags, err := r.tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

type tagRequest struct {
	Name string `json:"name"`
}

// createTag creates a tag
func (r *Router) createTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respondError(c, policy.NewValidationError("name", "this field is required"))
		return
	}

	tag := &models.Tag{Name: req.Name}
	if err := r.tags.Create(c.Request.Context(), tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// getTag returns a tag by ID
func (r *Router) getTag(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	tag, err := r.tags.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if tag == nil {
		respondError(c, policy.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// updateTag renames a tag
func (r *Router) updateTag(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	tag, err := r.tags.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if tag == nil {
		respondError(c, policy.ErrNotFound)
		return
	}

	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respondError(c, policy.NewValidationError("name", "this field is required"))
		return
	}
	tag.Name = req.Name
	if err := r.tags.Update(c.Request.Context(), tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// deleteTag deletes a tag and its post links
func (r *Router) deleteTag(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := r.tags.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listComments lists all comments in creation order
func (r *Router) listComments(c *gin.Context) {
	comments, err := r.comments.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// getComment returns a comment by ID
func (r *Router) getComment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	comment, err := r.comments.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if comment == nil {
		respondError(c, policy.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, comment)
}

type createCommentRequest struct {
	PostID  int64  `json:"post_id"`
	Content string `json:"content"`
}

// createComment creates a comment authored by the caller's profile
func (r *Router) createComment(c *gin.Context) {
	caller := r.caller(c)
	if err := policy.CanComment(caller); err != nil {
		respondError(c, err)
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, policy.NewValidationError("body", "invalid request body"))
		return
	}
	fields := map[string]string{}
	if req.PostID <= 0 {
		fields["post_id"] = "this field is required"
	}
	if req.Content == "" {
		fields["content"] = "this field is required"
	}
	if len(fields) > 0 {
		respondError(c, &policy.ValidationError{Fields: fields})
		return
	}

	post, err := r.posts.GetByID(c.Request.Context(), req.PostID)
	if err != nil {
		respondError(c, err)
		return
	}
	if post == nil {
		respondError(c, policy.ErrNotFound)
		return
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: caller.Profile.ID,
		Content:  req.Content,
	}
	if err := r.comments.Create(c.Request.Context(), comment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// listLikes lists all like edges
func (r *Router) listLikes(c *gin.Context) {
	likes, err := r.likes.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, likes)
}

type createLikeRequest struct {
	PostID int64 `json:"post_id"`
}

// createLike creates a like edge owned by the caller's profile. A racing
// duplicate is reported as a constraint violation here, unlike the toggle
// path which converges silently.
func (r *Router) createLike(c *gin.Context) {
	caller := r.caller(c)
	if err := policy.CanToggle(caller); err != nil {
		respondError(c, err)
		return
	}

	var req createLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PostID <= 0 {
		respondError(c, policy.NewValidationError("post_id", "this field is required"))
		return
	}

	post, err := r.posts.GetByID(c.Request.Context(), req.PostID)
	if err != nil {
		respondError(c, err)
		return
	}
	if post == nil {
		respondError(c, policy.ErrNotFound)
		return
	}

	like := &models.Like{PostID: post.ID, UserID: caller.Profile.ID}
	if err := r.likes.Create(c.Request.Context(), like); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, policy.NewValidationError("post_id", "already liked"))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, like)
}

// deleteLike removes a like edge, owner only
func (r *Router) deleteLike(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var like models.Like
	if err := r.db.WithContext(c.Request.Context()).First(&like, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, policy.ErrNotFound)
			return
		}
		respondError(c, err)
		return
	}
	if err := policy.CanMutateEdge(r.caller(c), like.UserID); err != nil {
		respondError(c, err)
		return
	}

	if err := r.likes.DeleteEdge(c.Request.Context(), like.PostID, like.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listFollows lists all follow edges
func (r *Router) listFollows(c *gin.Context) {
	follows, err := r.follows.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, follows)
}

type createFollowRequest struct {
	FollowingID int64 `json:"following_id"`
}

// createFollow creates a follow edge from the caller's profile
func (r *Router) createFollow(c *gin.Context) {
	caller := r.caller(c)
	if err := policy.CanToggle(caller); err != nil {
		respondError(c, err)
		return
	}

	var req createFollowRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FollowingID <= 0 {
		respondError(c, policy.NewValidationError("following_id", "this field is required"))
		return
	}
	if req.FollowingID == caller.Profile.ID {
		respondError(c, policy.NewValidationError("following", "you cannot follow yourself"))
		return
	}

	target, err := r.profiles.GetByID(c.Request.Context(), req.FollowingID)
	if err != nil {
		respondError(c, err)
		return
	}
	if target == nil {
		respondError(c, policy.ErrNotFound)
		return
	}

	follow := &models.Follow{
		FollowerID:  caller.Profile.ID,
		FollowingID: target.ID,
		FollowedAt:  time.Now().UTC(),
	}
	if err := r.follows.Create(c.Request.Context(), follow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, policy.NewValidationError("following", "already following"))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, follow)
}

// deleteFollow removes a follow edge, owner only
func (r *Router) deleteFollow(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var follow models.Follow
	if err := r.db.WithContext(c.Request.Context()).First(&follow, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, policy.ErrNotFound)
			return
		}
		respondError(c, err)
		return
	}
	if err := policy.CanMutateEdge(r.caller(c), follow.FollowerID); err != nil {
		respondError(c, err)
		return
	}

	if err := r.follows.DeleteEdge(c.Request.Context(), follow.FollowerID, follow.FollowingID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
