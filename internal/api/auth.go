package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flocknet/flock/internal/auth"
	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/internal/policy"
)

type registerRequest struct {
	Email          string `json:"email"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

// register creates a user identity
func (r *Router) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, policy.NewValidationError("body", "invalid request body"))
		return
	}

	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "this field is required"
	}
	if req.Username == "" {
		fields["username"] = "this field is required"
	}
	if len(req.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		respondError(c, &policy.ValidationError{Fields: fields})
		return
	}

	if existing, err := r.users.GetByEmail(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	} else if existing != nil {
		respondError(c, policy.NewValidationError("email", "email already taken"))
		return
	}
	if existing, err := r.users.GetByUsername(c.Request.Context(), req.Username); err != nil {
		respondError(c, err)
		return
	} else if existing != nil {
		respondError(c, policy.NewValidationError("username", "username already taken"))
		return
	}

	hash, err := r.tokens.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &models.User{
		Email:          req.Email,
		Username:       req.Username,
		PasswordHash:   hash,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, policy.NewValidationError("email", "email or username already taken"))
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// me returns the caller's own identity record
func (r *Router) me(c *gin.Context) {
	c.JSON(http.StatusOK, r.caller(c).User)
}

type updateMeRequest struct {
	Username       *string `json:"username"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
}

// updateMe updates the caller's own identity record
func (r *Router) updateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, policy.NewValidationError("body", "invalid request body"))
		return
	}

	user := r.caller(c).User
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ProfilePicture != nil {
		user.ProfilePicture = *req.ProfilePicture
	}

	if err := r.users.Update(c.Request.Context(), user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, policy.NewValidationError("username", "username already taken"))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// deleteMe removes the caller's account and, when present, its profile
// subtree: posts, comments, likes and follow edges included.
func (r *Router) deleteMe(c *gin.Context) {
	if err := r.users.DeleteUserCascade(c.Request.Context(), r.caller(c).User.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// obtainToken verifies credentials and issues a token pair
func (r *Router) obtainToken(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, policy.NewValidationError("body", "invalid request body"))
		return
	}

	user, err := r.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, auth.ErrInvalidCredentials)
		return
	}
	if err := r.tokens.CheckPassword(user.PasswordHash, req.Password); err != nil {
		respondError(c, err)
		return
	}

	pair, err := r.tokens.IssuePair(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// refreshToken rotates a refresh token into a fresh pair
func (r *Router) refreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		respondError(c, policy.NewValidationError("refresh_token", "this field is required"))
		return
	}

	pair, err := r.tokens.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// verifyToken checks an access token without side effects
func (r *Router) verifyToken(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		respondError(c, policy.NewValidationError("token", "this field is required"))
		return
	}

	if _, err := r.tokens.VerifyAccess(req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// logout revokes the presented refresh token
func (r *Router) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		respondError(c, policy.NewValidationError("refresh_token", "this field is required"))
		return
	}

	if err := r.tokens.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "logged out"})
}
