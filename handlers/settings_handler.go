package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gopkg.in/go-playground/validator.v9"

	"issue-blog-cms/helper"
	"issue-blog-cms/models"
	"issue-blog-cms/services"
)

type SettingsHandler struct {
	settingsService services.SettingsService
	Helper          *helper.HTTPHelper
}

func NewSettingsHandler(settingsService services.SettingsService, h *helper.HTTPHelper) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, Helper: h}
}

// GetSettings always answers with a complete document; missing or unreadable
// storage yields the defaults.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settingsService.GetSettings(c.Request.Context()))
}

// SaveSettings stores the posted keys as sent; keys left out keep following
// the defaults on read.
func (h *SettingsHandler) SaveSettings(c *gin.Context) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		h.Helper.SendBadRequest(c, "Invalid settings format")
		return
	}
	doc, err := json.Marshal(body)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid settings format")
		return
	}

	if err := h.settingsService.SaveDocument(c.Request.Context(), doc); err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			h.Helper.SendValidationError(c, verrs)
		case errors.Is(err, models.ErrValidation):
			h.Helper.SendBadRequest(c, "Invalid settings format")
		default:
			h.Helper.SendErrorMessage(c, http.StatusInternalServerError, "Failed to save settings", nil)
		}
		return
	}

	h.Helper.SendSuccess(c, "")
}
