package view

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, _ := gdb.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(
		&models.User{}, &models.Profile{}, &models.Tag{},
		&models.Post{}, &models.Comment{}, &models.Like{}, &models.Follow{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return gdb
}

func seedProfile(t *testing.T, gdb *gorm.DB, username string) *models.Profile {
	t.Helper()
	user := &models.User{Email: username + "@example.com", Username: username, PasswordHash: "x", CreatedAt: time.Now().UTC()}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	profile := &models.Profile{UserID: user.ID, Username: username}
	if err := gdb.Create(profile).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return profile
}

func TestPostDetail(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	repo := db.NewRepository(gdb)
	mapper := NewPostMapper(repo)

	alice := seedProfile(t, gdb, "alice")
	bob := seedProfile(t, gdb, "bob")

	post := &models.Post{
		AuthorID:  alice.ID,
		Content:   "hello",
		CreatedAt: time.Now().UTC(),
		Tags:      []models.Tag{{Name: "go"}, {Name: "web"}},
	}
	if err := gdb.Create(post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}

	// Comments in creation order, one like
	for _, content := range []string{"first", "second"} {
		if err := gdb.Create(&models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: content}).Error; err != nil {
			t.Fatalf("failed to seed comment: %v", err)
		}
	}
	if err := gdb.Create(&models.Like{PostID: post.ID, UserID: bob.ID}).Error; err != nil {
		t.Fatalf("failed to seed like: %v", err)
	}

	detail, err := mapper.Detail(ctx, post)
	if err != nil {
		t.Fatalf("Detail() error: %v", err)
	}

	if detail.Author != "alice" {
		t.Errorf("Author = %q, want alice", detail.Author)
	}
	if detail.Likes != 1 {
		t.Errorf("Likes = %d, want 1", detail.Likes)
	}
	if len(detail.LikedBy) != 1 || detail.LikedBy[0] != "bob" {
		t.Errorf("LikedBy = %v, want [bob]", detail.LikedBy)
	}
	if len(detail.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 names", detail.Tags)
	}
	if len(detail.Comments) != 2 {
		t.Fatalf("Comments = %d, want 2", len(detail.Comments))
	}
	if detail.Comments[0].Content != "first" || detail.Comments[1].Content != "second" {
		t.Errorf("comments out of creation order: %v", detail.Comments)
	}
	if detail.Comments[0].Author != "bob" {
		t.Errorf("comment author = %q, want bob", detail.Comments[0].Author)
	}
}

func TestPostListItems(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	mapper := NewPostMapper(db.NewRepository(gdb))

	alice := seedProfile(t, gdb, "alice")
	post := &models.Post{
		AuthorID:  alice.ID,
		Content:   "scannable",
		CreatedAt: time.Now().UTC(),
		Tags:      []models.Tag{{Name: "go"}},
	}
	if err := gdb.Create(post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}

	items, err := mapper.ListItems(ctx, []*models.Post{post})
	if err != nil {
		t.Fatalf("ListItems() error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	item := items[0]
	if item.ID != post.ID || item.Author != "alice" || item.Content != "scannable" {
		t.Errorf("unexpected list item: %+v", item)
	}
	if item.Likes != 0 {
		t.Errorf("Likes = %d, want 0", item.Likes)
	}
	if len(item.Tags) != 1 || item.Tags[0] != "go" {
		t.Errorf("Tags = %v, want [go]", item.Tags)
	}
}

func TestProfileDetailCounts(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	mapper := NewProfileMapper(db.NewRepository(gdb))

	alice := seedProfile(t, gdb, "alice")
	bob := seedProfile(t, gdb, "bob")
	carol := seedProfile(t, gdb, "carol")

	now := time.Now().UTC()
	for _, follower := range []*models.Profile{bob, carol} {
		if err := gdb.Create(&models.Follow{FollowerID: follower.ID, FollowingID: alice.ID, FollowedAt: now}).Error; err != nil {
			t.Fatalf("failed to seed follow: %v", err)
		}
	}
	if err := gdb.Create(&models.Follow{FollowerID: alice.ID, FollowingID: bob.ID, FollowedAt: now}).Error; err != nil {
		t.Fatalf("failed to seed follow: %v", err)
	}

	detail, err := mapper.Detail(ctx, alice)
	if err != nil {
		t.Fatalf("Detail() error: %v", err)
	}
	if detail.Followers != 2 {
		t.Errorf("Followers = %d, want 2", detail.Followers)
	}
	if detail.Following != 1 {
		t.Errorf("Following = %d, want 1", detail.Following)
	}
}
