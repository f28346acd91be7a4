package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/auth"
	"github.com/flocknet/flock/internal/cache"
	"github.com/flocknet/flock/internal/db"
	"github.com/flocknet/flock/internal/graph"
	"github.com/flocknet/flock/internal/reaction"
	"github.com/flocknet/flock/internal/view"
	"github.com/flocknet/flock/pkg/config"
	"github.com/flocknet/flock/pkg/logging"
)

// Router wires the REST surface to the engines, policy and mappers
type Router struct {
	db     *db.DB
	cache  *cache.Cache
	cfg    *config.Config
	logger *zap.Logger

	users    *db.UserRepository
	profiles *db.ProfileRepository
	posts    *db.PostRepository
	tags     *db.TagRepository
	comments *db.CommentRepository
	likes    *db.LikeRepository
	follows  *db.FollowRepository

	graph       *graph.Engine
	reactions   *reaction.Engine
	postView    *view.PostMapper
	profileView *view.ProfileMapper
	tokens      *auth.Service
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, cfg *config.Config) *Router {
	repo := db.NewRepository(database.DB)

	return &Router{
		db:     database,
		cache:  redisCache,
		cfg:    cfg,
		logger: logging.GetLogger().With(zap.String("component", "api-router")),

		users:    db.NewUserRepository(repo),
		profiles: db.NewProfileRepository(repo),
		posts:    db.NewPostRepository(repo),
		tags:     db.NewTagRepository(repo),
		comments: db.NewCommentRepository(repo),
		likes:    db.NewLikeRepository(repo),
		follows:  db.NewFollowRepository(repo),

		graph:       graph.NewEngine(repo),
		reactions:   reaction.NewEngine(repo),
		postView:    view.NewPostMapper(repo),
		profileView: view.NewProfileMapper(repo),
		tokens:      auth.NewService(&cfg.Auth, redisCache),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{r.cfg.Server.ClientOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	engine.Use(r.requestID, r.trace, r.resolveCaller)

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// Identity lifecycle
	authGroup := engine.Group("/auth")
	{
		authGroup.POST("/register", r.register)
		authGroup.GET("/me", r.requireAuth, r.me)
		authGroup.PATCH("/me", r.requireAuth, r.updateMe)
		authGroup.DELETE("/me", r.requireAuth, r.deleteMe)
		authGroup.POST("/logout", r.requireAuth, r.logout)
		authGroup.POST("/token", r.obtainToken)
		authGroup.POST("/token/refresh", r.refreshToken)
		authGroup.POST("/token/verify", r.verifyToken)
	}

	v1 := engine.Group("/api/v1")
	{
		profiles := v1.Group("/profiles")
		{
			profiles.GET("", r.listProfiles)
			profiles.POST("", r.requireAuth, r.createProfile)
			profiles.GET("/me", r.requireAuth, r.myProfile)
			profiles.GET("/followers", r.requireAuth, r.myFollowers)
			profiles.GET("/followings", r.requireAuth, r.myFollowings)
			profiles.GET("/:id", r.getProfile)
			profiles.PUT("/:id", r.requireAuth, r.updateProfile)
			profiles.PATCH("/:id", r.requireAuth, r.updateProfile)
			profiles.DELETE("/:id", r.requireAuth, r.deleteProfile)
			profiles.POST("/:id/follow", r.requireAuth, r.toggleFollow)
		}

		posts := v1.Group("/posts")
		{
			posts.GET("", r.listPosts)
			posts.POST("", r.requireAuth, r.createPost)
			posts.GET("/my_posts", r.requireAuth, r.myPosts)
			posts.GET("/following_posts", r.requireAuth, r.followingPosts)
			posts.GET("/likes", r.requireAuth, r.likedPosts)
			posts.GET("/:id", r.getPost)
			posts.PUT("/:id", r.requireAuth, r.updatePost)
			posts.PATCH("/:id", r.requireAuth, r.updatePost)
			posts.DELETE("/:id", r.requireAuth, r.deletePost)
			posts.POST("/:id/reaction", r.requireAuth, r.toggleReaction)
			posts.GET("/:id/comment", r.getPost)
			posts.POST("/:id/comment", r.requireAuth, r.addComment)
		}

		tags := v1.Group("/tags")
		{
			tags.GET("", r.listTags)
			tags.POST("", r.requireAuth, r.createTag)
			tags.GET("/:id", r.getTag)
			tags.PUT("/:id", r.requireAuth, r.updateTag)
			tags.PATCH("/:id", r.requireAuth, r.updateTag)
			tags.DELETE("/:id", r.requireAuth, r.deleteTag)
		}

		comments := v1.Group("/comments")
		{
			comments.GET("", r.listComments)
			comments.POST("", r.requireAuth, r.createComment)
			comments.GET("/:id", r.getComment)
		}

		likes := v1.Group("/likes")
		{
			likes.GET("", r.listLikes)
			likes.POST("", r.requireAuth, r.createLike)
			likes.DELETE("/:id", r.requireAuth, r.deleteLike)
		}

		follows := v1.Group("/follows")
		{
			follows.GET("", r.listFollows)
			follows.POST("", r.requireAuth, r.createFollow)
			follows.DELETE("/:id", r.requireAuth, r.deleteFollow)
		}
	}
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "flock-api",
	})
}
