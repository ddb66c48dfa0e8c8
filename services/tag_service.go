package services

import (
	"context"

	"issue-blog-cms/client"
	"issue-blog-cms/logger"
	"issue-blog-cms/models"
)

// tagSampleSize is how many open articles the server scans to build tags.
const tagSampleSize = 100

type TagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	// GetTags never fails; errors are logged and yield an empty slice.
	GetTags(ctx context.Context) []models.Tag
	// AggregateTags counts labels over open articles. Server context only.
	AggregateTags(ctx context.Context) ([]models.Tag, error)
}

type tagService struct {
	client   *client.Client
	articles ArticleService
	log      logger.Logger
}

func NewTagService(c *client.Client, articles ArticleService, log logger.Logger) TagService {
	return &tagService{client: c, articles: articles, log: log}
}

func (s *tagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	if s.client.IsServerSide() {
		return s.AggregateTags(ctx)
	}
	return client.GetList[models.Tag](ctx, s.client, "/api/tags", client.CacheArticles)
}

func (s *tagService) GetTags(ctx context.Context) []models.Tag {
	tags, err := s.ListTags(ctx)
	if err != nil {
		s.log.Warn("failed to load tags, returning empty list", logger.Error(err))
		return []models.Tag{}
	}
	return tags
}

func (s *tagService) AggregateTags(ctx context.Context) ([]models.Tag, error) {
	if !s.client.IsServerSide() {
		s.log.Warn("tag aggregation requested outside the server context, ignoring",
			logger.String("context", s.client.Context().String()))
		return []models.Tag{}, nil
	}

	articles, err := s.articles.ListArticles(ctx, models.ArticleFilter{
		Page:     1,
		PageSize: tagSampleSize,
		State:    string(models.StateOpen),
	})
	if err != nil {
		return []models.Tag{}, err
	}
	return models.AggregateTags(articles), nil
}
