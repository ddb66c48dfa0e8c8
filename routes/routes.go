package routes

import (
	"github.com/gin-gonic/gin"

	"issue-blog-cms/handlers"
	"issue-blog-cms/helper"
	"issue-blog-cms/logger"
	"issue-blog-cms/middleware"
	"issue-blog-cms/models"
	"issue-blog-cms/services"
)

// Handlers groups the route handlers the router dispatches to.
type Handlers struct {
	Article  *handlers.ArticleHandler
	Comment  *handlers.CommentHandler
	Tag      *handlers.TagHandler
	Settings *handlers.SettingsHandler
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Admin    *handlers.AdminHandler
}

// SetupRouter registers every route. Reads and comment posting are public;
// article writes, settings writes and the admin routes need an admin session.
func SetupRouter(h Handlers, authService services.AuthService, httpHelper *helper.HTTPHelper, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Log(log))
	router.Use(middleware.CORS())

	router.GET("/health", h.Health.Health)

	admin := []gin.HandlerFunc{
		middleware.AuthMiddleware(authService, httpHelper),
		middleware.RequireRole(httpHelper, models.RoleAdmin),
	}
	withAdmin := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(admin)+1)
		chain = append(chain, admin...)
		return append(chain, handler)
	}

	api := router.Group("/api")
	{
		api.GET("/health-check", h.Health.CheckUpstream)

		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/logout", h.Auth.Logout)
			auth.GET("/status", h.Auth.Status)
		}

		articles := api.Group("/articles")
		{
			articles.GET("/list", h.Article.ListArticles)
			articles.GET("/:number", h.Article.GetArticle)
			articles.GET("/:number/comments", h.Article.ListComments)

			articles.POST("", withAdmin(h.Article.CreateArticle)...)
			articles.PATCH("", withAdmin(h.Article.PatchArticle)...)
			articles.PATCH("/:number", withAdmin(h.Article.UpdateArticle)...)
			articles.POST("/:number/labels", withAdmin(h.Article.AddLabels)...)
			articles.PUT("/:number/labels", withAdmin(h.Article.SetLabels)...)
			articles.POST("/:number/archive", withAdmin(h.Article.ArchiveArticle)...)
			articles.POST("/:number/unpublish", withAdmin(h.Article.UnpublishArticle)...)
		}

		api.POST("/comments", h.Comment.CreateComment)
		api.GET("/tags", h.Tag.GetTags)

		for _, path := range []string{"/settings/file", "/settings"} {
			api.GET(path, h.Settings.GetSettings)
			api.POST(path, withAdmin(h.Settings.SaveSettings)...)
		}

		adminAPI := api.Group("/admin", admin...)
		{
			adminAPI.GET("/articles", h.Admin.GetArticles)
			adminAPI.GET("/dashboard", h.Admin.GetDashboard)
		}
	}

	return router
}
