// Package policy decides, per entity and per action, whether a caller may
// read or mutate it. Reads are never gated on identity; writes require an
// authenticated caller and, for owned records, the owning identity.
package policy

import (
	"github.com/flocknet/flock/internal/models"
)

// Caller is the resolved identity of the requester. A nil Caller (or one
// without a profile where a profile is required) is anonymous.
type Caller struct {
	User    *models.User
	Profile *models.Profile
}

// Authenticated reports whether the caller carries a verified identity
func (c *Caller) Authenticated() bool {
	return c != nil && c.User != nil
}

// requireAuth is the shared gate for every mutation path
func requireAuth(caller *Caller) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// CanCreateProfile gates profile creation: any authenticated identity
func CanCreateProfile(caller *Caller) error {
	return requireAuth(caller)
}

// CanMutateProfile gates profile update/delete: owner only
func CanMutateProfile(caller *Caller, profile *models.Profile) error {
	if err := requireAuth(caller); err != nil {
		return err
	}
	if profile.UserID != caller.User.ID {
		return ErrForbidden
	}
	return nil
}

// CanCreatePost gates post creation: any identity with a profile
func CanCreatePost(caller *Caller) error {
	if err := requireAuth(caller); err != nil {
		return err
	}
	if caller.Profile == nil {
		return ErrForbidden
	}
	return nil
}

// CanMutatePost gates post update/delete: author only
func CanMutatePost(caller *Caller, post *models.Post) error {
	if err := requireAuth(caller); err != nil {
		return err
	}
	if caller.Profile == nil || post.AuthorID != caller.Profile.ID {
		return ErrForbidden
	}
	return nil
}

// CanComment gates comment creation: any identity with a profile
func CanComment(caller *Caller) error {
	return CanCreatePost(caller)
}

// CanToggle gates follow/like toggling: any identity with a profile.
// Ownership of the resulting edge is implicit in the caller-side field.
func CanToggle(caller *Caller) error {
	return CanCreatePost(caller)
}

// CanMutateEdge gates direct mutation of a like or follow record through the
// plain CRUD surface: the caller must own the acted-upon side.
func CanMutateEdge(caller *Caller, ownerProfileID int64) error {
	if err := requireAuth(caller); err != nil {
		return err
	}
	if caller.Profile == nil || caller.Profile.ID != ownerProfileID {
		return ErrForbidden
	}
	return nil
}
