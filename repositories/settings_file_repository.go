package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"issue-blog-cms/logger"
)

type settingsFileRepository struct {
	path string
	log  logger.Logger
	mu   sync.Mutex
}

// NewSettingsFileRepository stores settings as pretty-printed JSON at path.
func NewSettingsFileRepository(path string, log logger.Logger) SettingsRepository {
	return &settingsFileRepository{path: path, log: log}
}

func (r *settingsFileRepository) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.log.Debug("settings file not found, using defaults", logger.String("path", r.path))
			return nil, nil
		}
		r.log.Warn("failed to read settings file, using defaults", logger.String("path", r.path), logger.Error(err))
		return nil, nil
	}
	if !json.Valid(data) {
		r.log.Warn("settings file is not valid JSON, using defaults", logger.String("path", r.path))
		return nil, nil
	}
	return data, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so readers see either the old or the new document.
func (r *settingsFileRepository) Save(_ context.Context, doc json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	data := buf.Bytes()

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	r.log.Info("settings saved", logger.String("path", r.path))
	return nil
}
