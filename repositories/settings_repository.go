package repositories

import (
	"context"
	"encoding/json"
)

// SettingsRepository is the backing store for the site settings document.
//
// Load returns the raw stored document, or nil when nothing usable is stored.
// Save replaces the stored document with doc exactly as given, which may
// hold only some of the keys. Merging over defaults happens on read and is the
// caller's job.
type SettingsRepository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc json.RawMessage) error
}
