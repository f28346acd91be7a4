// Package view shapes stored entities into caller-facing representations.
// Each entity has distinct named projections per caller intent (list, detail,
// creation echo) instead of one polymorphic serializer.
package view

import (
	"context"
	"fmt"
	"time"

	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/models"
)

// PostListItem is the minimal projection for feed scanning
type PostListItem struct {
	ID      int64    `json:"id"`
	Author  string   `json:"author"`
	Content string   `json:"content"`
	Likes   int64    `json:"likes"`
	Tags    []string `json:"tags"`
}

// CommentItem is a comment as shown inside a post detail
type CommentItem struct {
	ID      int64  `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// PostDetail is the full projection: record plus live derived fields
type PostDetail struct {
	ID        int64         `json:"id"`
	Author    string        `json:"author"`
	AuthorID  int64         `json:"author_id"`
	Content   string        `json:"content"`
	Media     string        `json:"media,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Likes     int64         `json:"likes"`
	LikedBy   []string      `json:"liked_by"`
	Tags      []string      `json:"tags"`
	Comments  []CommentItem `json:"comments"`
}

// PostEcho is the stored record echoed back after a write, including
// server-assigned fields
type PostEcho struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	Media     string    `json:"media,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []string  `json:"tags"`
}

// PostMapper loads the derived fields a post projection needs
type PostMapper struct {
	posts    *db.PostRepository
	profiles *db.ProfileRepository
	comments *db.CommentRepository
	likes    *db.LikeRepository
}

// NewPostMapper creates a new post mapper
func NewPostMapper(repo *db.Repository) *PostMapper {
	return &PostMapper{
		posts:    db.NewPostRepository(repo),
		profiles: db.NewProfileRepository(repo),
		comments: db.NewCommentRepository(repo),
		likes:    db.NewLikeRepository(repo),
	}
}

// ListItems projects posts into the list shape, resolving authors in one
// batch and counts/tags per post.
func (m *PostMapper) ListItems(ctx context.Context, posts []*models.Post) ([]PostListItem, error) {
	authorIDs := make([]int64, 0, len(posts))
	seen := make(map[int64]bool)
	for _, post := range posts {
		if !seen[post.AuthorID] {
			seen[post.AuthorID] = true
			authorIDs = append(authorIDs, post.AuthorID)
		}
	}
	authors, err := m.profiles.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	authorMap := make(map[int64]*models.Profile, len(authors))
	for _, author := range authors {
		authorMap[author.ID] = author
	}

	items := make([]PostListItem, 0, len(posts))
	for _, post := range posts {
		author := authorMap[post.AuthorID]
		if author == nil {
			continue
		}
		count, err := m.likes.CountByPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		tags, err := m.tagNames(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, PostListItem{
			ID:      post.ID,
			Author:  author.Username,
			Content: post.Content,
			Likes:   count,
			Tags:    tags,
		})
	}
	return items, nil
}

// Detail projects a post into the full shape with live like count, tag
// names, ordered comments and the liking usernames.
func (m *PostMapper) Detail(ctx context.Context, post *models.Post) (*PostDetail, error) {
	author, err := m.profiles.GetByID(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}
	authorName := ""
	if author != nil {
		authorName = author.Username
	}

	count, err := m.likes.CountByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	likerIDs, err := m.likes.UserIDsByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	likers, err := m.profiles.GetByIDs(ctx, likerIDs)
	if err != nil {
		return nil, err
	}
	likedBy := make([]string, 0, len(likers))
	for _, liker := range likers {
		likedBy = append(likedBy, liker.Username)
	}

	tags, err := m.tagNames(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	comments, err := m.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	commentItems := make([]CommentItem, 0, len(comments))
	for _, comment := range comments {
		commentAuthor, err := m.profiles.GetByID(ctx, comment.AuthorID)
		if err != nil {
			return nil, err
		}
		name := ""
		if commentAuthor != nil {
			name = commentAuthor.Username
		}
		commentItems = append(commentItems, CommentItem{
			ID:      comment.ID,
			Author:  name,
			Content: comment.Content,
		})
	}

	return &PostDetail{
		ID:        post.ID,
		Author:    authorName,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		Media:     post.Media,
		CreatedAt: post.CreatedAt,
		Likes:     count,
		LikedBy:   likedBy,
		Tags:      tags,
		Comments:  commentItems,
	}, nil
}

// Echo projects a freshly stored post, including server-assigned fields
func (m *PostMapper) Echo(ctx context.Context, post *models.Post) (*PostEcho, error) {
	tags, err := m.tagNames(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostEcho{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		Media:     post.Media,
		CreatedAt: post.CreatedAt,
		Tags:      tags,
	}, nil
}

func (m *PostMapper) tagNames(ctx context.Context, postID int64) ([]string, error) {
	tags, err := m.posts.TagsFor(ctx, postID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names, nil
}
