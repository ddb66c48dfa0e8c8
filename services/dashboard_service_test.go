package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"issue-blog-cms/models"
)

func TestDashboardIsolatesFailures(t *testing.T) {
	f, c := newUpstream(t)
	f.Seed(models.Issue{Title: "live", Labels: []models.Label{{Name: "go", Color: "00add8"}}})
	f.Seed(models.Issue{Title: "old", State: models.StateClosed, Labels: []models.Label{{Name: "archived"}}})
	f.Seed(models.Issue{Title: "wip", State: models.StateClosed, Labels: []models.Label{{Name: "draft"}}})

	articles := NewArticleService(c, nopLogger())
	svc := NewDashboardService(articles, NewTagService(c, articles, nopLogger()))

	d := svc.Load(context.Background())
	assert.Len(t, d.Published, 1)
	assert.Len(t, d.Drafts, 1)
	assert.Len(t, d.Archived, 1)
	assert.Len(t, d.Tags, 1)

	f.Fail(http.MethodGet, "/-/issues", http.StatusInternalServerError, "down")
	d = svc.Load(context.Background())
	assert.NotNil(t, d.Published)
	assert.Empty(t, d.Published)
	assert.Empty(t, d.Drafts)
	assert.Empty(t, d.Tags)
}

type stubArticles struct {
	ArticleService
	drafts []models.Issue
}

func (s stubArticles) GetDraftArticles(context.Context, models.ArticleFilter) []models.Issue {
	return s.drafts
}

func (s stubArticles) GetPublishedArticles(context.Context, models.ArticleFilter) []models.Issue {
	return []models.Issue{{Number: "1"}}
}

func (s stubArticles) GetArchivedArticles(context.Context, models.ArticleFilter) []models.Issue {
	return []models.Issue{}
}

type stubTags struct{ TagService }

func (stubTags) GetTags(context.Context) []models.Tag { return []models.Tag{{Label: models.Label{Name: "go"}, Count: 1}} }

func TestDashboardOneSectionEmpty(t *testing.T) {
	svc := NewDashboardService(stubArticles{drafts: []models.Issue{}}, stubTags{})

	d := svc.Load(context.Background())
	assert.Len(t, d.Published, 1)
	assert.Empty(t, d.Drafts)
	assert.Len(t, d.Tags, 1)
}
