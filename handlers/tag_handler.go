package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"issue-blog-cms/helper"
	"issue-blog-cms/models"
	"issue-blog-cms/services"
)

type TagHandler struct {
	tagService services.TagService
	Helper     *helper.HTTPHelper
}

func NewTagHandler(tagService services.TagService, h *helper.HTTPHelper) *TagHandler {
	return &TagHandler{tagService: tagService, Helper: h}
}

// GetTags returns the labels in use across open articles with their counts.
func (h *TagHandler) GetTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(c.Request.Context())
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusOK, []models.Tag{})
		return
	}
	if err != nil {
		h.Helper.SendFailure(c, "fetch tags", err)
		return
	}

	c.JSON(http.StatusOK, tags)
}
