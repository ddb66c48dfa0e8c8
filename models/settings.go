package models

import (
	"encoding/json"
	"fmt"
)

// SiteSettings is the single site configuration document.
type SiteSettings struct {
	SiteName        string   `json:"siteName" validate:"required"`
	SiteDescription string   `json:"siteDescription" validate:"required"`
	SiteKeywords    []string `json:"siteKeywords"`

	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
	LogoURL      string `json:"logoUrl"`
	FaviconURL   string `json:"faviconUrl"`

	// SocialLinks maps a platform name (twitter, github, ...) to a URL.
	SocialLinks map[string]string `json:"socialLinks"`

	ArticlesPerPage int      `json:"articlesPerPage" validate:"gte=0"`
	FeaturedTags    []string `json:"featuredTags"`
	ShowAuthorInfo  bool     `json:"showAuthorInfo"`
	EnableComments  bool     `json:"enableComments"`

	DefaultMetaImage  string `json:"defaultMetaImage"`
	GoogleAnalyticsID string `json:"googleAnalyticsId,omitempty"`

	CustomCSS        string `json:"customCss,omitempty"`
	CustomHeaderHTML string `json:"customHeaderHtml,omitempty"`
	CustomFooterHTML string `json:"customFooterHtml,omitempty"`

	// APICacheMinutes bounds the in-process settings cache.
	APICacheMinutes int `json:"apiCacheMinutes"`
	// BrowserCacheMinutes bounds the persistent client-side settings cache.
	BrowserCacheMinutes int `json:"browserCacheMinutes"`
	// ArticleCacheTTL and CommentCacheTTL are upstream revalidation windows in seconds.
	ArticleCacheTTL int `json:"articleCacheTTL"`
	CommentCacheTTL int `json:"commentCacheTTL"`
}

// DefaultRevalidateSeconds applies when a configured revalidation window is unset or invalid.
const DefaultRevalidateSeconds = 600

// DefaultSettings returns a fresh copy of the compiled-in defaults.
func DefaultSettings() SiteSettings {
	return SiteSettings{
		SiteName:        "Modern Blog",
		SiteDescription: "A modern blog backed by an issue tracker",
		SiteKeywords:    []string{"blog", "go", "issues"},

		PrimaryColor: "#0070f3",
		AccentColor:  "#f5a623",
		LogoURL:      "/logo.svg",
		FaviconURL:   "/favicon.ico",

		SocialLinks: map[string]string{
			"twitter": "https://twitter.com",
			"github":  "https://github.com",
		},

		ArticlesPerPage: 10,
		FeaturedTags:    []string{},
		ShowAuthorInfo:  true,
		EnableComments:  true,

		DefaultMetaImage: "/og-image.png",

		APICacheMinutes:     5,
		BrowserCacheMinutes: 60,
		ArticleCacheTTL:     DefaultRevalidateSeconds,
		CommentCacheTTL:     60,
	}
}

// Clone returns a deep copy so cached values are never shared with callers.
func (s SiteSettings) Clone() SiteSettings {
	out := s
	out.SiteKeywords = append([]string(nil), s.SiteKeywords...)
	out.FeaturedTags = append([]string(nil), s.FeaturedTags...)
	if s.SocialLinks != nil {
		out.SocialLinks = make(map[string]string, len(s.SocialLinks))
		for k, v := range s.SocialLinks {
			out.SocialLinks[k] = v
		}
	}
	return out
}

// MergeWithDefaults overlays a partial settings document onto the defaults one
// top-level key at a time. Keys missing from raw, or set to null, keep their
// default; nested objects such as socialLinks are replaced, not merged.
func MergeWithDefaults(raw []byte) (SiteSettings, error) {
	defaults := DefaultSettings()
	if len(raw) == 0 {
		return defaults, nil
	}

	var partial map[string]json.RawMessage
	if err := json.Unmarshal(raw, &partial); err != nil {
		return defaults, fmt.Errorf("decode settings: %w", err)
	}

	base, err := json.Marshal(defaults)
	if err != nil {
		return defaults, fmt.Errorf("encode default settings: %w", err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return defaults, fmt.Errorf("decode default settings: %w", err)
	}

	for k, v := range partial {
		if string(v) == "null" {
			continue
		}
		merged[k] = v
	}

	combined, err := json.Marshal(merged)
	if err != nil {
		return defaults, fmt.Errorf("encode merged settings: %w", err)
	}

	var out SiteSettings
	if err := json.Unmarshal(combined, &out); err != nil {
		return defaults, fmt.Errorf("decode merged settings: %w", err)
	}
	return out, nil
}

// RevalidateSeconds normalizes a configured revalidation window.
func RevalidateSeconds(v int) int {
	if v <= 0 {
		return DefaultRevalidateSeconds
	}
	return v
}
