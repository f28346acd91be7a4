package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// A second connection would see a different in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return gdb
}

func seedProfile(t *testing.T, gdb *gorm.DB, username string) *models.Profile {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	profile := &models.Profile{UserID: user.ID, Username: username}
	if err := gdb.Create(profile).Error; err != nil {
		t.Fatalf("failed to seed profile %s: %v", username, err)
	}
	return profile
}

func seedPost(t *testing.T, gdb *gorm.DB, author *models.Profile, content string, tags ...string) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID:  author.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	for _, name := range tags {
		post.Tags = append(post.Tags, models.Tag{Name: name})
	}
	if err := gdb.Create(post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return post
}

func count(t *testing.T, gdb *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := gdb.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestDeletePostCascade(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(gdb)
	posts := NewPostRepository(repo)

	author := seedProfile(t, gdb, "alice")
	commenter := seedProfile(t, gdb, "bob")
	post := seedPost(t, gdb, author, "hello", "go")
	keep := seedPost(t, gdb, author, "other")

	if err := gdb.Create(&models.Comment{PostID: post.ID, AuthorID: commenter.ID, Content: "nice"}).Error; err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}
	if err := gdb.Create(&models.Like{PostID: post.ID, UserID: commenter.ID}).Error; err != nil {
		t.Fatalf("failed to seed like: %v", err)
	}

	if err := posts.DeletePostCascade(ctx, post.ID); err != nil {
		t.Fatalf("DeletePostCascade() error: %v", err)
	}

	if got := count(t, gdb, &models.Post{}); got != 1 {
		t.Errorf("posts remaining = %d, want 1", got)
	}
	if got := count(t, gdb, &models.Comment{}); got != 0 {
		t.Errorf("comments remaining = %d, want 0", got)
	}
	if got := count(t, gdb, &models.Like{}); got != 0 {
		t.Errorf("likes remaining = %d, want 0", got)
	}
	var links int64
	if err := gdb.Raw("SELECT COUNT(*) FROM post_tags WHERE post_id = ?", post.ID).Scan(&links).Error; err != nil {
		t.Fatalf("failed to count tag links: %v", err)
	}
	if links != 0 {
		t.Errorf("tag links remaining = %d, want 0", links)
	}

	remaining, err := posts.GetByID(ctx, keep.ID)
	if err != nil || remaining == nil {
		t.Errorf("unrelated post should survive, got (%v, %v)", remaining, err)
	}
}

func TestDeleteProfileCascade(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	repo := NewRepository(gdb)
	profiles := NewProfileRepository(repo)

	alice := seedProfile(t, gdb, "alice")
	bob := seedProfile(t, gdb, "bob")

	post := seedPost(t, gdb, alice, "by alice", "go")
	bobPost := seedPost(t, gdb, bob, "by bob")

	// Alice's activity on bob's post, and edges in both directions
	if err := gdb.Create(&models.Comment{PostID: bobPost.ID, AuthorID: alice.ID, Content: "hi"}).Error; err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}
	if err := gdb.Create(&models.Like{PostID: bobPost.ID, UserID: alice.ID}).Error; err != nil {
		t.Fatalf("failed to seed like: %v", err)
	}
	if err := gdb.Create(&models.Like{PostID: post.ID, UserID: bob.ID}).Error; err != nil {
		t.Fatalf("failed to seed like: %v", err)
	}
	now := time.Now().UTC()
	if err := gdb.Create(&models.Follow{FollowerID: alice.ID, FollowingID: bob.ID, FollowedAt: now}).Error; err != nil {
		t.Fatalf("failed to seed follow: %v", err)
	}
	if err := gdb.Create(&models.Follow{FollowerID: bob.ID, FollowingID: alice.ID, FollowedAt: now}).Error; err != nil {
		t.Fatalf("failed to seed follow: %v", err)
	}

	if err := profiles.DeleteProfileCascade(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteProfileCascade() error: %v", err)
	}

	if got := count(t, gdb, &models.Profile{}); got != 1 {
		t.Errorf("profiles remaining = %d, want 1", got)
	}
	if got := count(t, gdb, &models.Post{}); got != 1 {
		t.Errorf("posts remaining = %d, want 1", got)
	}
	if got := count(t, gdb, &models.Follow{}); got != 0 {
		t.Errorf("follow edges remaining = %d, want 0", got)
	}
	if got := count(t, gdb, &models.Comment{}); got != 0 {
		t.Errorf("comments remaining = %d, want 0", got)
	}

	// Bob's like on alice's deleted post must be gone; no orphans
	var likes []models.Like
	if err := gdb.Find(&likes).Error; err != nil {
		t.Fatalf("failed to list likes: %v", err)
	}
	if len(likes) != 0 {
		t.Errorf("likes remaining = %d, want 0", len(likes))
	}
}

func TestLikeUniquenessConstraint(t *testing.T) {
	gdb := newTestDB(t)
	alice := seedProfile(t, gdb, "alice")
	post := seedPost(t, gdb, alice, "hello")

	if err := gdb.Create(&models.Like{PostID: post.ID, UserID: alice.ID}).Error; err != nil {
		t.Fatalf("first like failed: %v", err)
	}
	err := gdb.Create(&models.Like{PostID: post.ID, UserID: alice.ID}).Error
	if err == nil {
		t.Fatal("duplicate like should violate the unique index")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate like error = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestFindOrCreateByNames(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	tags := NewTagRepository(NewRepository(gdb))

	first, err := tags.FindOrCreateByNames(ctx, []string{"go", "db"})
	if err != nil {
		t.Fatalf("FindOrCreateByNames() error: %v", err)
	}
	second, err := tags.FindOrCreateByNames(ctx, []string{"go", "http"})
	if err != nil {
		t.Fatalf("FindOrCreateByNames() error: %v", err)
	}

	if first[0].ID != second[0].ID {
		t.Errorf("existing tag %q should be reused, got IDs %d and %d", "go", first[0].ID, second[0].ID)
	}
	if got := count(t, gdb, &models.Tag{}); got != 3 {
		t.Errorf("tags stored = %d, want 3", got)
	}
}
