package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"issue-blog-cms/client"
	"issue-blog-cms/config"
)

const (
	healthProbeTimeout  = 10 * time.Second
	healthProbeEndpoint = "/-/issues?page=1&page_size=1"
)

type HealthHandler struct {
	cfg    config.APIConfig
	client *client.Client
}

// NewHealthHandler takes the resolved config even when resolving failed, so
// the check can report which setting is missing.
func NewHealthHandler(cfg config.APIConfig, c *client.Client) *HealthHandler {
	return &HealthHandler{cfg: cfg, client: c}
}

// Health is the liveness probe.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// CheckUpstream probes the tracker with a one item list request. The token is
// only ever reported as present or missing.
func (h *HealthHandler) CheckUpstream(c *gin.Context) {
	cfgView := gin.H{
		"API_BASE_URL": presence(h.cfg.APIBaseURL),
		"API_TOKEN":    presence(h.cfg.APIToken),
		"REPO_NAME":    h.cfg.RepoName,
	}
	if h.cfg.APIBaseURL != "" {
		cfgView["API_BASE_URL"] = h.cfg.APIBaseURL
	}

	switch {
	case h.cfg.APIBaseURL == "":
		h.fail(c, http.StatusInternalServerError, config.EnvAPIBaseURL+" environment variable is missing", "", cfgView)
		return
	case h.cfg.APIToken == "":
		h.fail(c, http.StatusInternalServerError, config.EnvAPIToken+" environment variable is missing", "", cfgView)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	var data json.RawMessage
	err := h.client.GetJSON(ctx, healthProbeEndpoint, client.NoCache, &data)
	if err != nil {
		var se *client.StatusError
		switch {
		case errors.As(err, &se):
			h.fail(c, se.Status, "API returned "+http.StatusText(se.Status), se.Body, cfgView)
		case errors.Is(err, client.ErrMalformed):
			h.fail(c, http.StatusInternalServerError, "API returned invalid JSON", err.Error(), nil)
		default:
			h.fail(c, http.StatusInternalServerError, "Health check failed", err.Error(), cfgView)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"message":     "API connection successful",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"config":      cfgView,
		"apiResponse": describePayload(data),
	})
}

func (h *HealthHandler) fail(c *gin.Context, status int, message, details string, cfgView gin.H) {
	body := gin.H{
		"error":     message,
		"status":    "error",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if details != "" {
		body["details"] = details
	}
	if cfgView != nil {
		body["config"] = cfgView
	}
	c.JSON(status, body)
}

func describePayload(data json.RawMessage) gin.H {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return gin.H{"dataType": "object", "itemCount": nil}
	}
	out := gin.H{"dataType": "array", "itemCount": len(items)}
	if len(items) > 0 {
		out["sampleData"] = items[0]
	}
	return out
}

func presence(v string) string {
	if v == "" {
		return "missing"
	}
	return "present"
}
