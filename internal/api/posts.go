package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/feed"
	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/internal/policy"
)

func (r *Router) postFilterFromQuery(c *gin.Context) feed.PostFilter {
	return feed.PostFilter{
		Content: c.Query("content"),
		Author:  c.Query("author"),
		Tags:    feed.ParseTagList(c.Query("tag")),
	}
}

func (r *Router) renderPostList(c *gin.Context, scopes []db.Scope) {
	posts, err := r.posts.List(c.Request.Context(), scopes...)
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := r.postView.ListItems(c.Request.Context(), posts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// listPosts lists posts narrowed by content/author/tag filters
func (r *Router) listPosts(c *gin.Context) {
	r.renderPostList(c, feed.CompilePostFilter(r.postFilterFromQuery(c)))
}

// myPosts redirects to the unrestricted listing filtered to the caller's
// own username
func (r *Router) myPosts(c *gin.Context) {
	caller := r.caller(c)
	if caller.Profile == nil {
		respondError(c, policy.ErrNotFound)
		return
	}
	c.Redirect(http.StatusFound, "/api/v1/posts?author="+url.QueryEscape(caller.Profile.Username))
}

// followingPosts lists posts by authors the caller follows
func (r *Router) followingPosts(c *gin.Context) {
	caller := r.caller(c)
	if caller.Profile == nil {
		respondError(c, policy.ErrNotFound)
		return
	}

	authorIDs, err := r.graph.FollowingFeedFilter(c.Request.Context(), caller.Profile.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	scopes := feed.CompilePostFilter(r.postFilterFromQuery(c))
	scopes = append(scopes, feed.RestrictToAuthors(authorIDs))
	r.renderPostList(c, scopes)
}

// likedPosts lists posts the caller has liked
func (r *Router) likedPosts(c *gin.Context) {
	caller := r.caller(c)
	if caller.Profile == nil {
		respondError(c, policy.ErrNotFound)
		return
	}

	scopes := feed.CompilePostFilter(r.postFilterFromQuery(c))
	scopes = append(scopes, feed.RestrictToLiker(caller.Profile.ID))
	r.renderPostList(c, scopes)
}

type postRequest struct {
	Content string   `json:"content"`
	Media   string   `json:"media"`
	Tags    []string `json:"tags"`
}

// createPost creates a post authored by the caller's profile
func (r *Router) createPost(c *gin.Context) {
	caller := r.caller(c)
	if err := policy.CanCreatePost(caller); err != nil {
		respondError(c, err)
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, policy.NewValidationError("body", "invalid request body"))
		return
	}
	if req.Content == "" {
		respondError(c, policy.NewValidationError("content", "this field is required"))
		return
	}

	tags, err := r.tags.FindOrCreateByNames(c.Request.Context(), req.Tags)
	if err != nil {
		respondError(c, err)
		return
	}

	post := &models.Post{
		AuthorID:  caller.Profile.ID,
		Content:   req.Content,
		Media:     req.Media,
		CreatedAt: time.Now().UTC(),
		Tags:      tags,
	}
	if err := r.posts.Create(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}

	echo, err := r.postView.Echo(c.Request.Context(), post)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, echo)
}

func (r *Router) loadPost(c *gin.Context) *models.Post {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return nil
	}
	post, err := r.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil
	}
	if post == nil {
		respondError(c, policy.ErrNotFound)
		return nil
	}
	return post
}

// getPost returns a post detail with live derived fields
func (r *Router) getPost(c *gin.Context) {
	post := r.loadPost(c)
	if post == nil {
		return
	}

	detail, err := r.postView.Detail(c.Request.Context(), post)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// updatePost updates a post, author only
func (r *Router) updatePost(c *gin.Context) {
	post := r.loadPost(c)
	if post == nil {
		return
	}
	if err := policy.CanMutatePost(r.caller(c), post); err != nil {
		respondError(c, err)
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, policy.NewValidationError("body", "invalid request body"))
		return
	}

	// PUT replaces the whole record; PATCH updates only the supplied fields
	fullReplace := c.Request.Method == http.MethodPut
	if fullReplace {
		if req.Content == "" {
			respondError(c, policy.NewValidationError("content", "this field is required"))
			return
		}
		post.Content = req.Content
		post.Media = req.Media
	} else {
		if req.Content != "" {
			post.Content = req.Content
		}
		if req.Media != "" {
			post.Media = req.Media
		}
	}

	if err := r.posts.Update(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}
	if fullReplace || req.Tags != nil {
		tags, err := r.tags.FindOrCreateByNames(c.Request.Context(), req.Tags)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := r.posts.ReplaceTags(c.Request.Context(), post, tags); err != nil {
			respondError(c, err)
			return
		}
	}

	echo, err := r.postView.Echo(c.Request.Context(), post)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, echo)
}

// deletePost deletes a post and its dependents, author only
func (r *Router) deletePost(c *gin.Context) {
	post := r.loadPost(c)
	if post == nil {
		return
	}
	if err := policy.CanMutatePost(r.caller(c), post); err != nil {
		respondError(c, err)
		return
	}

	if err := r.posts.DeletePostCascade(c.Request.Context(), post.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// toggleReaction flips the caller's like edge on the post and returns the
// resulting state with the live count
func (r *Router) toggleReaction(c *gin.Context) {
	caller := r.caller(c)
	if err := policy.CanToggle(caller); err != nil {
		respondError(c, err)
		return
	}

	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	liked, count, err := r.reactions.ToggleLike(c.Request.Context(), id, caller.Profile.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": count})
}

type commentRequest struct {
	Content string `json:"content"`
}

// addComment is the nested-write path: the request carries only the comment
// content; post and author are attached server-side and the parent post's
// detail view is returned as confirmation.
func (r *Router) addComment(c *gin.Context) {
	caller := r.caller(c)
	if err := policy.CanComment(caller); err != nil {
		respondError(c, err)
		return
	}

	post := r.loadPost(c)
	if post == nil {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		respondError(c, policy.NewValidationError("content", "this field is required"))
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

	detail, err := r.postView.Detail(c.Request.Context(), post)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}
