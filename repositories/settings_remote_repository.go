package repositories

import (
	"context"
	"encoding/json"

	"issue-blog-cms/client"
	"issue-blog-cms/models"
)

const settingsFileEndpoint = "/api/settings/file"

type settingsRemoteRepository struct {
	client *client.Client
}

// NewSettingsRemoteRepository reads and writes settings through the server's
// settings routes. Used from the proxied context.
func NewSettingsRemoteRepository(c *client.Client) SettingsRepository {
	return &settingsRemoteRepository{client: c}
}

func (r *settingsRemoteRepository) Load(ctx context.Context) ([]byte, error) {
	var raw json.RawMessage
	if err := r.client.GetJSON(ctx, settingsFileEndpoint, client.NoCache, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *settingsRemoteRepository) Save(ctx context.Context, doc json.RawMessage) error {
	var resp models.SuccessResponse
	return r.client.PostJSON(ctx, settingsFileEndpoint, doc, &resp)
}
