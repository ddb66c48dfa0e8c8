package services

import (
	"context"
	"fmt"
	"strings"

	"issue-blog-cms/client"
	"issue-blog-cms/logger"
	"issue-blog-cms/models"
)

type CommentService interface {
	ListComments(ctx context.Context, number string, page, pageSize int) ([]models.Comment, error)
	// GetComments never fails; errors are logged and yield an empty slice.
	GetComments(ctx context.Context, number string, page, pageSize int) []models.Comment
	CreateComment(ctx context.Context, number, body string) (*models.Comment, error)
}

type commentService struct {
	client *client.Client
	ep     endpoints
	log    logger.Logger
}

func NewCommentService(c *client.Client, log logger.Logger) CommentService {
	return &commentService{
		client: c,
		ep:     endpoints{ctx: c.Context()},
		log:    log,
	}
}

func (s *commentService) ListComments(ctx context.Context, number string, page, pageSize int) ([]models.Comment, error) {
	if err := checkNumber(number); err != nil {
		return []models.Comment{}, err
	}
	return client.GetList[models.Comment](ctx, s.client, s.ep.comments(number, page, pageSize), client.CacheComments)
}

func (s *commentService) GetComments(ctx context.Context, number string, page, pageSize int) []models.Comment {
	comments, err := s.ListComments(ctx, number, page, pageSize)
	if err != nil {
		s.log.Warn("failed to load comments, returning empty list",
			logger.String("number", number), logger.Error(err))
		return []models.Comment{}
	}
	return comments
}

func (s *commentService) CreateComment(ctx context.Context, number, body string) (*models.Comment, error) {
	if err := checkNumber(number); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: comment body is required", models.ErrValidation)
	}

	var payload interface{} = models.CommentBody{Body: body}
	if !s.ep.server() {
		payload = models.CreateCommentRequest{IssueNumber: models.IssueNumber(number), Body: body}
	}

	comment, err := client.Post[models.Comment](ctx, s.client, s.ep.commentCreate(number), payload)
	if err != nil {
		return nil, fmt.Errorf("create comment on article %s: %w", number, err)
	}
	return &comment, nil
}
