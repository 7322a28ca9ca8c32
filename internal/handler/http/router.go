package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/handler/http/middleware"
	"github.com/popcornsocial/popcorn/internal/infrastructure/metrics"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Repositories groups the storage the mock backend serves from.
type Repositories struct {
	Users       contract.IUserRepository
	Posts       contract.IPostRepository
	Collections contract.ICollectionRepository
	Comments    contract.ICommentRepository
	Saved       contract.ISavedCollectionRepository
	Follows     contract.IFollowRepository
	Counter     contract.ICounter
}

// RouterDeps are the services shared by every handler.
type RouterDeps struct {
	Cache     contract.IListCache
	Hasher    contract.IHasher
	Tokens    contract.ITokenIssuer
	Validator usecasecontract.IValidator
	Logger    usecasecontract.IAppLogger
	Config    usecasecontract.IConfigProvider
	// Registry receives the HTTP metrics and is exposed on /metrics. Nil disables both.
	Registry *prometheus.Registry
}

type Router struct {
	authHandler       *AuthHandler
	userHandler       *UserHandler
	postHandler       *PostHandler
	collectionHandler *CollectionHandler
	commentHandler    *CommentHandler
	savedHandler      *SavedCollectionHandler
	followerHandler   *FollowerHandler
	countHandler      *CountHandler
	tokens            contract.ITokenIssuer
	config            usecasecontract.IConfigProvider
	registry          *prometheus.Registry
}

func NewRouter(repos Repositories, deps RouterDeps) *Router {
	return &Router{
		authHandler:       NewAuthHandler(repos.Users, deps.Hasher, deps.Tokens, deps.Validator, deps.Logger),
		userHandler:       NewUserHandler(repos.Users),
		postHandler:       NewPostHandler(repos.Posts, repos.Users, deps.Cache, deps.Logger),
		collectionHandler: NewCollectionHandler(repos.Collections, repos.Users, deps.Cache, deps.Logger),
		commentHandler:    NewCommentHandler(repos.Comments, repos.Posts, repos.Collections, repos.Users, deps.Cache, deps.Logger),
		savedHandler:      NewSavedCollectionHandler(repos.Saved, repos.Collections),
		followerHandler:   NewFollowerHandler(repos.Follows, repos.Users),
		countHandler:      NewCountHandler(repos.Counter),
		tokens:            deps.Tokens,
		config:            deps.Config,
		registry:          deps.Registry,
	}
}

// SetupRoutes mounts the json-server compatible routes at the root.
func (r *Router) SetupRoutes(router *gin.Engine) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "Prefer"},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimiter(r.config.GetRateLimitPerSecond()))

	if r.registry != nil {
		router.Use(metrics.NewHTTPMetrics(r.registry).Middleware())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
	}
	router.GET("/healthz", func(c *gin.Context) {
		MessageHandler(c, http.StatusOK, "ok")
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
	}

	// Reads are public; a valid token only changes what private data is visible.
	public := router.Group("/")
	public.Use(middleware.OptionalAuth(r.tokens))
	{
		public.GET("/users/:id", r.userHandler.GetUser)
		public.GET("/posts", r.postHandler.ListPosts)
		public.GET("/posts/:id", r.postHandler.GetPost)
		public.GET("/collections", r.collectionHandler.ListCollections)
		public.GET("/collections/:id", r.collectionHandler.GetCollection)
		public.GET("/comments", r.commentHandler.ListComments)
		public.GET("/savedCollections", r.savedHandler.ListSaved)
		public.GET("/followers", r.followerHandler.ListFollowers)
		public.GET("/count/:resource", r.countHandler.Count)
	}

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleWare(r.tokens))
	{
		protected.PATCH("/users/:id", r.userHandler.UpdateUser)

		protected.POST("/posts", r.postHandler.CreatePost)
		protected.PATCH("/posts/:id", r.postHandler.PatchPost)
		protected.DELETE("/posts/:id", r.postHandler.DeletePost)

		protected.POST("/collections", r.collectionHandler.CreateCollection)
		protected.PATCH("/collections/:id", r.collectionHandler.PatchCollection)
		protected.DELETE("/collections/:id", r.collectionHandler.DeleteCollection)

		protected.POST("/comments", r.commentHandler.CreateComment)
		protected.DELETE("/comments/:id", r.commentHandler.DeleteComment)

		protected.POST("/savedCollections", r.savedHandler.SaveCollection)
		protected.DELETE("/savedCollections/:id", r.savedHandler.DeleteSaved)

		protected.POST("/followers", r.followerHandler.Follow)
		protected.DELETE("/followers/:id", r.followerHandler.Unfollow)
	}
}
