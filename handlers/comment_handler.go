package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"issue-blog-cms/helper"
	"issue-blog-cms/models"
	"issue-blog-cms/services"
)

type CommentHandler struct {
	commentService services.CommentService
	Helper         *helper.HTTPHelper
}

func NewCommentHandler(commentService services.CommentService, h *helper.HTTPHelper) *CommentHandler {
	return &CommentHandler{commentService: commentService, Helper: h}
}

// CreateComment posts a reader comment. Anonymous callers are allowed.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Issue number and body are required")
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), req.IssueNumber.String(), req.Body)
	if err != nil {
		h.Helper.SendFailure(c, "post comment", err)
		return
	}

	c.JSON(http.StatusOK, comment)
}
