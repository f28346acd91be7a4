package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/internal/policy"
)

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
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

	if err := gdb.AutoMigrate(&models.User{}, &models.Profile{}, &models.Follow{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return NewEngine(db.NewRepository(gdb)), gdb
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
		t.Fatalf("failed to seed user: %v", err)
	}
	profile := &models.Profile{UserID: user.ID, Username: username}
	if err := gdb.Create(profile).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return profile
}

func TestToggleFollow(t *testing.T) {
	engine, gdb := newTestEngine(t)
	ctx := context.Background()

	alice := seedProfile(t, gdb, "alice")
	bob := seedProfile(t, gdb, "bob")

	state, err := engine.ToggleFollow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("first toggle error: %v", err)
	}
	if state != StateFollowing {
		t.Errorf("first toggle state = %q, want %q", state, StateFollowing)
	}

	var edges int64
	gdb.Model(&models.Follow{}).Count(&edges)
	if edges != 1 {
		t.Fatalf("follow edges = %d, want 1", edges)
	}

	followers, err := engine.Followers(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Followers() error: %v", err)
	}
	if len(followers) != 1 || followers[0].ID != alice.ID {
		t.Errorf("bob's followers = %v, want [alice]", followers)
	}

	following, err := engine.Following(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Following() error: %v", err)
	}
	if len(following) != 1 || following[0].ID != bob.ID {
		t.Errorf("alice's following = %v, want [bob]", following)
	}

	// Second toggle returns to the original state
	state, err = engine.ToggleFollow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("second toggle error: %v", err)
	}
	if state != StateNotFollowing {
		t.Errorf("second toggle state = %q, want %q", state, StateNotFollowing)
	}
	gdb.Model(&models.Follow{}).Count(&edges)
	if edges != 0 {
		t.Errorf("follow edges after untoggle = %d, want 0", edges)
	}
}

func TestToggleFollowSelf(t *testing.T) {
	engine, gdb := newTestEngine(t)
	ctx := context.Background()

	alice := seedProfile(t, gdb, "alice")

	_, err := engine.ToggleFollow(ctx, alice.ID, alice.ID)
	verr, ok := policy.AsValidation(err)
	if !ok {
		t.Fatalf("self-follow error = %v, want ValidationError", err)
	}
	if _, named := verr.Fields["following"]; !named {
		t.Errorf("validation should name the following field, got %v", verr.Fields)
	}

	var edges int64
	gdb.Model(&models.Follow{}).Count(&edges)
	if edges != 0 {
		t.Errorf("self-follow created %d edges, want 0", edges)
	}
}

func TestToggleFollowMissingTarget(t *testing.T) {
	engine, gdb := newTestEngine(t)
	ctx := context.Background()

	alice := seedProfile(t, gdb, "alice")

	_, err := engine.ToggleFollow(ctx, alice.ID, alice.ID+999)
	if !errors.Is(err, policy.ErrNotFound) {
		t.Errorf("toggle on missing target error = %v, want ErrNotFound", err)
	}
}

func TestToggleFollowDuplicateCreateConverges(t *testing.T) {
	engine, gdb := newTestEngine(t)
	ctx := context.Background()

	alice := seedProfile(t, gdb, "alice")
	bob := seedProfile(t, gdb, "bob")

	// A concurrent toggle wins the create race before ours runs
	if err := gdb.Create(&models.Follow{
		FollowerID:  alice.ID,
		FollowingID: bob.ID,
		FollowedAt:  time.Now().UTC(),
	}).Error; err != nil {
		t.Fatalf("failed to seed racing edge: %v", err)
	}

	// The engine saw no edge at check time; simulate by deleting and
	// re-inserting behind its back is not possible synchronously, so assert
	// the duplicate-create path directly: a create against an existing edge
	// reports ErrDuplicatedKey, which ToggleFollow converts into the
	// convergent StateFollowing result.
	err := gdb.Create(&models.Follow{
		FollowerID:  alice.ID,
		FollowingID: bob.ID,
		FollowedAt:  time.Now().UTC(),
	}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate edge error = %v, want gorm.ErrDuplicatedKey", err)
	}

	// The toggle itself still flips the present edge off
	state, err := engine.ToggleFollow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	if state != StateNotFollowing {
		t.Errorf("toggle state = %q, want %q", state, StateNotFollowing)
	}
}

func TestFollowingFeedFilter(t *testing.T) {
	engine, gdb := newTestEngine(t)
	ctx := context.Background()

	alice := seedProfile(t, gdb, "alice")
	bob := seedProfile(t, gdb, "bob")
	carol := seedProfile(t, gdb, "carol")

	if _, err := engine.ToggleFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	if _, err := engine.ToggleFollow(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("toggle error: %v", err)
	}

	ids, err := engine.FollowingFeedFilter(ctx, alice.ID)
	if err != nil {
		t.Fatalf("FollowingFeedFilter() error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("feed filter ids = %v, want 2 entries", ids)
	}

	// Unfollow narrows the predicate
	if _, err := engine.ToggleFollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	ids, err = engine.FollowingFeedFilter(ctx, alice.ID)
	if err != nil {
		t.Fatalf("FollowingFeedFilter() error: %v", err)
	}
	if len(ids) != 1 || ids[0] != carol.ID {
		t.Errorf("feed filter ids after unfollow = %v, want [carol]", ids)
	}
}
