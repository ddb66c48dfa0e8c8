package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"issue-blog-cms/helper"
	"issue-blog-cms/models"
	"issue-blog-cms/services"
)

// adminArticleCount is the size of the admin recent articles list.
const adminArticleCount = 20

type AdminHandler struct {
	articleService   services.ArticleService
	dashboardService services.DashboardService
	Helper           *helper.HTTPHelper
}

func NewAdminHandler(articleService services.ArticleService, dashboardService services.DashboardService, h *helper.HTTPHelper) *AdminHandler {
	return &AdminHandler{articleService: articleService, dashboardService: dashboardService, Helper: h}
}

func (h *AdminHandler) GetArticles(c *gin.Context) {
	articles := h.articleService.GetArticles(c.Request.Context(), models.ArticleFilter{PageSize: adminArticleCount})
	c.JSON(http.StatusOK, articles)
}

func (h *AdminHandler) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboardService.Load(c.Request.Context()))
}
