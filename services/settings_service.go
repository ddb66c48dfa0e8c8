package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gopkg.in/go-playground/validator.v9"

	"issue-blog-cms/cache"
	"issue-blog-cms/client"
	"issue-blog-cms/logger"
	"issue-blog-cms/models"
	"issue-blog-cms/repositories"
)

// persistentSettingsKey names the settings copy in the persistent cache.
const persistentSettingsKey = "site-settings"

// SettingsService caches the settings document in process for
// apiCacheMinutes. An optional persistent copy (file or Redis), kept for
// browserCacheMinutes, is served only when the backing store cannot be read.
type SettingsService interface {
	GetSettings(ctx context.Context) models.SiteSettings
	SaveSettings(ctx context.Context, settings models.SiteSettings) error
	// SaveDocument stores doc as sent, possibly partial. The merged view must
	// validate.
	SaveDocument(ctx context.Context, doc []byte) error
	ResetSettings(ctx context.Context) error
	// RevalidateWindow is the upstream response freshness for a cache hint.
	RevalidateWindow(ctx context.Context, hint client.CacheHint) time.Duration
}

type SettingsOption func(*settingsService)

// WithSettingsClock replaces time.Now, for tests.
func WithSettingsClock(now func() time.Time) SettingsOption {
	return func(s *settingsService) { s.now = now }
}

// WithPersistentCache adds the last-known-good copy.
func WithPersistentCache(store cache.Store) SettingsOption {
	return func(s *settingsService) { s.persistent = store }
}

type settingsService struct {
	repo       repositories.SettingsRepository
	persistent cache.Store
	validate   *validator.Validate
	log        logger.Logger
	now        func() time.Time

	mu        sync.RWMutex
	cached    *models.SiteSettings
	fetchedAt time.Time
}

func NewSettingsService(repo repositories.SettingsRepository, validate *validator.Validate, log logger.Logger, opts ...SettingsOption) SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	s := &settingsService{
		repo:     repo,
		validate: validate,
		log:      log,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *settingsService) GetSettings(ctx context.Context) models.SiteSettings {
	if cached, ok := s.fresh(); ok {
		return cached
	}

	data, err := s.repo.Load(ctx)
	if err != nil {
		if settings, ok := s.loadPersistent(ctx); ok {
			s.log.Warn("failed to load settings, using the cached copy", logger.Error(err))
			s.store(settings)
			return settings.Clone()
		}
		s.log.Warn("failed to load settings, using defaults", logger.Error(err))
		defaults := models.DefaultSettings()
		s.store(defaults)
		return defaults
	}

	merged, err := models.MergeWithDefaults(data)
	if err != nil {
		s.log.Warn("stored settings are malformed, using defaults", logger.Error(err))
	}
	s.store(merged)
	s.savePersistent(ctx, merged)
	return merged.Clone()
}

// SaveSettings writes the whole document.
func (s *settingsService) SaveSettings(ctx context.Context, settings models.SiteSettings) error {
	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return s.SaveDocument(ctx, doc)
}

// SaveDocument leaves absent keys absent in storage so they keep following
// the defaults. Caches change only after the write succeeded.
func (s *settingsService) SaveDocument(ctx context.Context, doc []byte) error {
	settings, err := models.MergeWithDefaults(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", models.ErrValidation, verrs)
		}
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	s.store(settings)
	s.savePersistent(ctx, settings)
	return nil
}

func (s *settingsService) ResetSettings(ctx context.Context) error {
	return s.SaveSettings(ctx, models.DefaultSettings())
}

func (s *settingsService) RevalidateWindow(ctx context.Context, hint client.CacheHint) time.Duration {
	settings := s.GetSettings(ctx)
	seconds := models.DefaultRevalidateSeconds
	switch hint {
	case client.CacheArticles:
		seconds = models.RevalidateSeconds(settings.ArticleCacheTTL)
	case client.CacheComments:
		seconds = models.RevalidateSeconds(settings.CommentCacheTTL)
	}
	return time.Duration(seconds) * time.Second
}

// fresh returns the in-process copy while younger than its apiCacheMinutes.
func (s *settingsService) fresh() (models.SiteSettings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil {
		return models.SiteSettings{}, false
	}
	ttl := time.Duration(s.cached.APICacheMinutes) * time.Minute
	if s.now().Sub(s.fetchedAt) >= ttl {
		return models.SiteSettings{}, false
	}
	return s.cached.Clone(), true
}

func (s *settingsService) store(settings models.SiteSettings) {
	cp := settings.Clone()
	s.mu.Lock()
	s.cached = &cp
	s.fetchedAt = s.now()
	s.mu.Unlock()
}

func (s *settingsService) loadPersistent(ctx context.Context) (models.SiteSettings, bool) {
	if s.persistent == nil {
		return models.SiteSettings{}, false
	}
	data, err := s.persistent.Get(ctx, persistentSettingsKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("failed to read cached settings", logger.Error(err))
		}
		return models.SiteSettings{}, false
	}
	settings, err := models.MergeWithDefaults(data)
	if err != nil {
		s.log.Warn("cached settings are malformed, ignoring", logger.Error(err))
		return models.SiteSettings{}, false
	}
	return settings, true
}

func (s *settingsService) savePersistent(ctx context.Context, settings models.SiteSettings) {
	if s.persistent == nil {
		return
	}
	ttl := time.Duration(settings.BrowserCacheMinutes) * time.Minute
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(settings)
	if err != nil {
		s.log.Warn("failed to encode settings for cache", logger.Error(err))
		return
	}
	if err := s.persistent.Set(ctx, persistentSettingsKey, data, ttl); err != nil {
		s.log.Warn("failed to cache settings", logger.Error(err))
	}
}
