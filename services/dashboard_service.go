package services

import (
	"context"
	"sync"

	"issue-blog-cms/models"
)

// Dashboard is the admin overview. Each section is loaded independently; a
// section whose load failed is empty.
type Dashboard struct {
	Tags      []models.Tag   `json:"tags"`
	Published []models.Issue `json:"published"`
	Drafts    []models.Issue `json:"drafts"`
	Archived  []models.Issue `json:"archived"`
}

type DashboardService interface {
	Load(ctx context.Context) Dashboard
}

type dashboardService struct {
	articles ArticleService
	tags     TagService
}

func NewDashboardService(articles ArticleService, tags TagService) DashboardService {
	return &dashboardService{articles: articles, tags: tags}
}

// Load fetches all sections concurrently. The degrading facade methods keep
// one failing section from affecting the others.
func (s *dashboardService) Load(ctx context.Context) Dashboard {
	var (
		d  Dashboard
		wg sync.WaitGroup
	)
	filter := models.ArticleFilter{Page: 1, PageSize: 100}

	wg.Add(4)
	go func() {
		defer wg.Done()
		d.Tags = s.tags.GetTags(ctx)
	}()
	go func() {
		defer wg.Done()
		d.Published = s.articles.GetPublishedArticles(ctx, filter)
	}()
	go func() {
		defer wg.Done()
		d.Drafts = s.articles.GetDraftArticles(ctx, filter)
	}()
	go func() {
		defer wg.Done()
		d.Archived = s.articles.GetArchivedArticles(ctx, filter)
	}()
	wg.Wait()

	return d
}
