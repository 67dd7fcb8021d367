package router

import (
	"time"

	"threadvote/internal/auth"
	"threadvote/internal/config"
	"threadvote/internal/handlers"
	"threadvote/internal/middleware"
	"threadvote/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer calls into.
type Deps struct {
	Auth     *services.AuthService
	Posts    *services.PostService
	Comments *services.CommentService
	Votes    *services.VoteService
	Sessions *auth.Manager
	DB       handlers.Pinger
}

// New builds the gin engine with middleware and every route registered.
func New(cfg config.Config, log *zap.Logger, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recovery(log))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(deps.Sessions.Options())
	r.Use(sessions.Sessions(auth.CookieName, store))

	r.Use(middleware.LoadSession(deps.Sessions, log))

	RegisterRoutes(r, log, deps)
	return r
}

func RegisterRoutes(r *gin.Engine, log *zap.Logger, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Sessions, log)
	postHandler := handlers.NewPostHandler(deps.Posts, log)
	commentHandler := handlers.NewCommentHandler(deps.Comments, log)
	voteHandler := handlers.NewVoteHandler(deps.Votes, log)
	healthHandler := handlers.NewHealthHandler(deps.DB, log)

	r.GET("/healthz", healthHandler.Healthz)

	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/me", authHandler.Me)

		api.GET("/posts", postHandler.List)
		api.GET("/posts/:id", postHandler.Detail)
	}

	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)
		authorized.POST("/comments", commentHandler.Create)
		authorized.POST("/votes", voteHandler.Cast)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	// cookies only cross origins that are listed explicitly
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
