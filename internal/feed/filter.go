// Package feed compiles caller-supplied optional filter criteria into gorm
// scopes. Filters are conjunctive across axes; the tag filter is disjunctive
// across its values. Absent or malformed values compile to no-ops, never to
// errors.
package feed

import (
	"strings"

	"gorm.io/gorm"
)

// Scope narrows a query
type Scope = func(*gorm.DB) *gorm.DB

// PostFilter holds the optional criteria for a post feed
type PostFilter struct {
	Content string
	Author  string
	Tags    []string
}

// ProfileFilter holds the optional criteria for a profile listing
type ProfileFilter struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Bio       string
}

// ParseTagList splits a comma-separated tag parameter, dropping empty items
func ParseTagList(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// containsCI builds a case-insensitive substring predicate. LOWER/LIKE is
// used instead of ILIKE so the same scope runs on both postgres and the
// sqlite test store.
func containsCI(column, value string) Scope {
	pattern := "%" + strings.ToLower(value) + "%"
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("LOWER("+column+") LIKE ?", pattern)
	}
}

func noop(tx *gorm.DB) *gorm.DB {
	return tx
}

// CompilePostFilter compiles a post filter into query scopes
func CompilePostFilter(f PostFilter) []Scope {
	var scopes []Scope
	if f.Content != "" {
		scopes = append(scopes, containsCI("posts.content", f.Content))
	}
	if f.Author != "" {
		pattern := "%" + strings.ToLower(f.Author) + "%"
		scopes = append(scopes, func(tx *gorm.DB) *gorm.DB {
			return tx.Joins("JOIN profiles ON profiles.id = posts.author_id").
				Where("LOWER(profiles.username) LIKE ?", pattern)
		})
	}
	if len(f.Tags) > 0 {
		tags := f.Tags
		scopes = append(scopes, func(tx *gorm.DB) *gorm.DB {
			return tx.Where(
				"posts.id IN (SELECT post_tags.post_id FROM post_tags JOIN tags ON tags.id = post_tags.tag_id WHERE tags.name IN ?)",
				tags,
			)
		})
	}
	if len(scopes) == 0 {
		scopes = append(scopes, noop)
	}
	return scopes
}

// CompileProfileFilter compiles a profile filter into query scopes. The email
// axis lives on the owning user record, so it joins through users.
func CompileProfileFilter(f ProfileFilter) []Scope {
	var scopes []Scope
	if f.Email != "" {
		pattern := "%" + strings.ToLower(f.Email) + "%"
		scopes = append(scopes, func(tx *gorm.DB) *gorm.DB {
			return tx.Joins("JOIN users ON users.id = profiles.user_id").
				Where("LOWER(users.email) LIKE ?", pattern)
		})
	}
	if f.Username != "" {
		scopes = append(scopes, containsCI("profiles.username", f.Username))
	}
	if f.FirstName != "" {
		scopes = append(scopes, containsCI("profiles.first_name", f.FirstName))
	}
	if f.LastName != "" {
		scopes = append(scopes, containsCI("profiles.last_name", f.LastName))
	}
	if f.Bio != "" {
		scopes = append(scopes, containsCI("profiles.bio", f.Bio))
	}
	if len(scopes) == 0 {
		scopes = append(scopes, noop)
	}
	return scopes
}

// RestrictToAuthors narrows a post feed to the given author IDs. An empty set
// matches nothing, which is the correct result for a caller following no one.
func RestrictToAuthors(authorIDs []int64) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		if len(authorIDs) == 0 {
			return tx.Where("1 = 0")
		}
		return tx.Where("posts.author_id IN ?", authorIDs)
	}
}

// RestrictToLiker narrows a post feed to posts the given profile has liked
func RestrictToLiker(profileID int64) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(
			"posts.id IN (SELECT likes.post_id FROM likes WHERE likes.user_id = ?)",
			profileID,
		)
	}
}
