package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/policy"
	"github.com/flocknet/flock/pkg/telemetry"
)

const callerKey = "caller"

// requestID tags every request with a uuid for log correlation
func (r *Router) requestID(c *gin.Context) {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header("X-Request-ID", id)
	c.Next()
}

// trace opens a span per request
func (r *Router) trace(c *gin.Context) {
	ctx, span := telemetry.Tracer().Start(c.Request.Context(), c.Request.Method+" "+c.FullPath())
	defer span.End()

	span.SetAttributes(
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", c.FullPath()),
	)
	c.Request = c.Request.WithContext(ctx)

	start := time.Now()
	c.Next()

	span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	r.logger.Debug("request handled",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("duration", time.Since(start)))
}

// resolveCaller attaches the caller identity when a valid bearer token is
// present. It never rejects; read paths stay open to anonymous callers.
func (r *Router) resolveCaller(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.Next()
		return
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	userID, err := r.tokens.VerifyAccess(tokenString)
	if err != nil {
		c.Next()
		return
	}

	user, err := r.users.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		c.Next()
		return
	}
	profile, err := r.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.Next()
		return
	}

	c.Set(callerKey, &policy.Caller{User: user, Profile: profile})
	c.Next()
}

// requireAuth aborts with 401 unless resolveCaller attached an identity
func (r *Router) requireAuth(c *gin.Context) {
	if !r.caller(c).Authenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": policy.ErrUnauthenticated.Error()})
		return
	}
	c.Next()
}

// caller returns the resolved caller, nil-safe for anonymous requests
func (r *Router) caller(c *gin.Context) *policy.Caller {
	value, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, ok := value.(*policy.Caller)
	if !ok {
		return nil
	}
	return caller
}
