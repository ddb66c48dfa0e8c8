package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"issue-blog-cms/helper"
	"issue-blog-cms/models"
	"issue-blog-cms/services"
)

const (
	defaultPageSize        = 10
	defaultCommentPageSize = 30
)

type ArticleHandler struct {
	articleService services.ArticleService
	commentService services.CommentService
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, commentService services.CommentService, h *helper.HTTPHelper) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, commentService: commentService, Helper: h}
}

// ListArticles proxies the filtered issue list. A missing repository reads as
// an empty list.
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	var filter models.ArticleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query parameters")
		return
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.State == "" {
		filter.State = string(models.StateOpen)
	}

	articles, err := h.articleService.ListArticles(c.Request.Context(), filter)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusOK, []models.Issue{})
		return
	}
	if err != nil {
		h.Helper.SendFailure(c, "fetch articles", err)
		return
	}

	c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	article, err := h.articleService.GetArticle(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Helper.SendFailure(c, "fetch article", err)
		return
	}
	if article == nil {
		h.Helper.SendNotFoundError(c, "Article not found")
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req models.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if req.Title == "" || req.Body == "" {
			h.Helper.SendBadRequest(c, "Title and body are required")
			return
		}
		h.Helper.SendBadRequest(c, "State must be open or closed")
		return
	}

	article, err := h.articleService.CreateArticle(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendFailure(c, "create article", err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// PatchArticle updates the article named by the "number" field of the body.
func (h *ArticleHandler) PatchArticle(c *gin.Context) {
	var req models.PatchArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Number == "" {
		h.Helper.SendBadRequest(c, "Article number is required")
		return
	}
	h.update(c, req.Number.String(), req.UpdateArticleRequest)
}

// UpdateArticle updates the article named in the path.
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	var req models.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid JSON payload")
		return
	}
	h.update(c, c.Param("number"), req)
}

func (h *ArticleHandler) update(c *gin.Context, number string, req models.UpdateArticleRequest) {
	if req.Empty() {
		h.Helper.SendBadRequest(c, "No update data provided")
		return
	}

	article, err := h.articleService.UpdateArticle(c.Request.Context(), number, req)
	if err != nil {
		h.Helper.SendFailure(c, "update article", err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// AddLabels adds to the label set (POST); SetLabels replaces it (PUT).
func (h *ArticleHandler) AddLabels(c *gin.Context) {
	h.labels(c, false)
}

func (h *ArticleHandler) SetLabels(c *gin.Context) {
	h.labels(c, true)
}

func (h *ArticleHandler) labels(c *gin.Context, replace bool) {
	var req models.LabelsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Labels == nil {
		h.Helper.SendBadRequest(c, "Invalid labels format. Expects an array of strings.")
		return
	}

	var (
		labels []models.Label
		err    error
		action = "add labels"
	)
	if replace {
		action = "set labels"
		labels, err = h.articleService.SetArticleLabels(c.Request.Context(), c.Param("number"), req.Labels)
	} else {
		labels, err = h.articleService.AddArticleLabels(c.Request.Context(), c.Param("number"), req.Labels)
	}
	if err != nil {
		h.Helper.SendFailure(c, action, err)
		return
	}

	c.JSON(http.StatusOK, labels)
}

func (h *ArticleHandler) ArchiveArticle(c *gin.Context) {
	article, err := h.articleService.ArchiveArticle(c.Request.Context(), c.Param("number"))
	if err != nil {
		var partial *services.PartialArchiveError
		if errors.As(err, &partial) {
			h.Helper.SendFailure(c, "archive article", err)
			return
		}
		h.Helper.SendFailure(c, "add archived label", err)
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) UnpublishArticle(c *gin.Context) {
	article, err := h.articleService.UnpublishArticle(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Helper.SendFailure(c, "unpublish article", err)
		return
	}

	c.JSON(http.StatusOK, article)
}

type commentPage struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

func (h *ArticleHandler) ListComments(c *gin.Context) {
	var q commentPage
	if err := c.ShouldBindQuery(&q); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query parameters")
		return
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultCommentPageSize
	}

	comments, err := h.commentService.ListComments(c.Request.Context(), c.Param("number"), q.Page, q.PageSize)
	if err != nil {
		h.Helper.SendFailure(c, "fetch comments", err)
		return
	}

	c.JSON(http.StatusOK, comments)
}
