package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/feed"
	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/internal/policy"
)

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, policy.ErrNotFound
	}
	return id, nil
}

// listProfiles lists profiles narrowed by query-parameter filters
func (r *Router) listProfiles(c *gin.Context) {
	filter := feed.ProfileFilter{
		Email:     c.Query("email"),
		Username:  c.Query("username"),
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Bio:       c.Query("bio"),
	}

	profiles, err := r.profiles.List(c.Request.Context(), feed.CompileProfileFilter(filter)...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r.profileView.ListItems(profiles))
}

type profileRequest struct {
	Username       string  `json:"username"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	BirthDate      *string `json:"birth_date"`
	ProfilePicture string  `json:"profile_picture"`
	Bio            string  `json:"bio"`
}

func parseBirthDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, policy.NewValidationError("birth_date", "must be YYYY-MM-DD")
	}
	return &parsed, nil
}

// createProfile creates the caller's profile
func (r *Router) createProfile(c *gin.Context) {
	caller := r.caller(c)
	if err := policy.CanCreateProfile(caller); err != nil {
		respondError(c, err)
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, policy.NewValidationError("body", "invalid request body"))
		return
	}
	if req.Username == "" {
		respondError(c, policy.NewValidationError("username", "this field is required"))
		return
	}
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		respondError(c, err)
		return
	}

	profile := &models.Profile{
		UserID:         caller.User.ID,
		Username:       req.Username,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		BirthDate:      birthDate,
		ProfilePicture: req.ProfilePicture,
		Bio:            req.Bio,
	}
	if err := r.profiles.Create(c.Request.Context(), profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, policy.NewValidationError("username", "profile already exists or username taken"))
			return
		}
		respondError(c, err)
		return
	}

	// Creation echo: the full stored record with server-assigned fields
	c.JSON(http.StatusCreated, profile)
}

// getProfile returns a profile detail with live relationship counts
func (r *Router) getProfile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := r.profiles.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		respondError(c, policy.ErrNotFound)
		return
	}

	detail, err := r.profileView.Detail(c.Request.Context(), profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// updateProfile updates a profile, owner only
func (r *Router) updateProfile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := r.profiles.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		respondError(c, policy.ErrNotFound)
		return
	}
	if err := policy.CanMutateProfile(r.caller(c), profile); err != nil {
		respondError(c, err)
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, policy.NewValidationError("body", "invalid request body"))
		return
	}
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		respondError(c, err)
		return
	}

	// PUT replaces the whole record; PATCH updates only the supplied fields
	if c.Request.Method == http.MethodPut {
		if req.Username == "" {
			respondError(c, policy.NewValidationError("username", "this field is required"))
			return
		}
		profile.Username = req.Username
		profile.FirstName = req.FirstName
		profile.LastName = req.LastName
		profile.BirthDate = birthDate
		profile.ProfilePicture = req.ProfilePicture
		profile.Bio = req.Bio
	} else {
		if req.Username != "" {
			profile.Username = req.Username
		}
		if req.FirstName != "" {
			profile.FirstName = req.FirstName
		}
		if req.LastName != "" {
			profile.LastName = req.LastName
		}
		if req.ProfilePicture != "" {
			profile.ProfilePicture = req.ProfilePicture
		}
		if req.Bio != "" {
			profile.Bio = req.Bio
		}
		if birthDate != nil {
			profile.BirthDate = birthDate
		}
	}

	if err := r.profiles.Update(c.Request.Context(), profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, policy.NewValidationError("username", "username taken"))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// deleteProfile deletes a profile and everything referencing it, owner only
func (r *Router) deleteProfile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := r.profiles.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		respondError(c, policy.ErrNotFound)
		return
	}
	if err := policy.CanMutateProfile(r.caller(c), profile); err != nil {
		respondError(c, err)
		return
	}

	if err := r.profiles.DeleteProfileCascade(c.Request.Context(), profile.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// myProfile redirects to the caller's own profile detail
func (r *Router) myProfile(c *gin.Context) {
	caller := r.caller(c)
	if caller.Profile == nil {
		respondError(c, policy.ErrNotFound)
		return
	}
	c.Redirect(http.StatusFound, "/api/v1/profiles/"+strconv.FormatInt(caller.Profile.ID, 10))
}

// toggleFollow flips the caller's follow edge onto the target profile
func (r *Router) toggleFollow(c *gin.Context) {
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

	state, err := r.graph.ToggleFollow(c.Request.Context(), caller.Profile.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// myFollowers lists the profiles following the caller
func (r *Router) myFollowers(c *gin.Context) {
	caller := r.caller(c)
	if caller.Profile == nil {
		respondError(c, policy.ErrNotFound)
		return
	}

	profiles, err := r.graph.Followers(c.Request.Context(), caller.Profile.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r.profileView.ListItems(profiles))
}

// myFollowings lists the profiles the caller follows
func (r *Router) myFollowings(c *gin.Context) {
	caller := r.caller(c)
	if caller.Profile == nil {
		respondError(c, policy.ErrNotFound)
		return
	}

	profiles, err := r.graph.Following(c.Request.Context(), caller.Profile.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r.profileView.ListItems(profiles))
}
