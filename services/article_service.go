package services

import (
	"context"
	"errors"
	"fmt"

	"issue-blog-cms/client"
	"issue-blog-cms/logger"
	"issue-blog-cms/models"
)

// ArticleService is the article facade over the API client.
//
// List reads come in two flavours: ListArticles returns the error for callers
// that must report it (route handlers), GetArticles logs it and degrades to an
// empty slice. Writes always return their error.
type ArticleService interface {
	ListArticles(ctx context.Context, filter models.ArticleFilter) ([]models.Issue, error)
	GetArticles(ctx context.Context, filter models.ArticleFilter) []models.Issue
	GetArticle(ctx context.Context, number string) (*models.Issue, error)

	CreateArticle(ctx context.Context, req models.CreateArticleRequest) (*models.Issue, error)
	CreateDraft(ctx context.Context, title, body string, labels []string) (*models.Issue, error)
	UpdateArticle(ctx context.Context, number string, req models.UpdateArticleRequest) (*models.Issue, error)
	PublishArticle(ctx context.Context, number string) (*models.Issue, error)
	UnpublishArticle(ctx context.Context, number string) (*models.Issue, error)
	ArchiveArticle(ctx context.Context, number string) (*models.Issue, error)

	SetArticleLabels(ctx context.Context, number string, labels []string) ([]models.Label, error)
	AddArticleLabels(ctx context.Context, number string, labels []string) ([]models.Label, error)
	SetArticlePriority(ctx context.Context, number, priority string) ([]models.Label, error)

	GetDraftArticles(ctx context.Context, filter models.ArticleFilter) []models.Issue
	GetPublishedArticles(ctx context.Context, filter models.ArticleFilter) []models.Issue
	GetArchivedArticles(ctx context.Context, filter models.ArticleFilter) []models.Issue
}

// PartialArchiveError reports an archive that labeled the article but failed
// to close it. Calling UnpublishArticle completes it.
type PartialArchiveError struct {
	Number string
	Step   string
	Err    error
}

func (e *PartialArchiveError) Error() string {
	return fmt.Sprintf("archive article %s: labeled %q but %s step failed: %v", e.Number, models.LabelArchived, e.Step, e.Err)
}

func (e *PartialArchiveError) Unwrap() error { return e.Err }

type createIssueBody struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
	State  string   `json:"state,omitempty"`
}

type articleService struct {
	client *client.Client
	ep     endpoints
	log    logger.Logger
}

func NewArticleService(c *client.Client, log logger.Logger) ArticleService {
	return &articleService{
		client: c,
		ep:     endpoints{ctx: c.Context()},
		log:    log,
	}
}

func (s *articleService) ListArticles(ctx context.Context, filter models.ArticleFilter) ([]models.Issue, error) {
	return client.GetList[models.Issue](ctx, s.client, s.ep.articleList(filter), client.CacheArticles)
}

func (s *articleService) GetArticles(ctx context.Context, filter models.ArticleFilter) []models.Issue {
	articles, err := s.ListArticles(ctx, filter)
	if err != nil {
		s.log.Warn("failed to load articles, returning empty list",
			logger.String("context", s.client.Context().String()),
			logger.Error(err))
		return []models.Issue{}
	}
	return articles
}

// GetArticle returns nil without an error when the article does not exist,
// including numbers that cannot name an article at all.
func (s *articleService) GetArticle(ctx context.Context, number string) (*models.Issue, error) {
	if !models.ValidIssueNumber(number) {
		return nil, nil
	}
	issue, err := client.Get[models.Issue](ctx, s.client, s.ep.article(number), client.CacheArticles)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", number, err)
	}
	return &issue, nil
}

// CreateArticle creates an issue. Trackers ignore a state on creation, so a
// requested closed state is applied with a follow-up update.
func (s *articleService) CreateArticle(ctx context.Context, req models.CreateArticleRequest) (*models.Issue, error) {
	if req.Title == "" || req.Body == "" {
		return nil, fmt.Errorf("%w: title and body are required", models.ErrValidation)
	}

	body := createIssueBody{Title: req.Title, Body: req.Body}
	if len(req.Labels) > 0 {
		body.Labels = req.Labels
	}
	if !s.ep.server() {
		body.State = req.State
	}

	created, err := client.Post[models.Issue](ctx, s.client, s.ep.articleCreate(), body)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	if req.State != "" && models.IssueState(req.State) != created.State {
		state := req.State
		updated, err := client.Patch[models.Issue](ctx, s.client, s.ep.article(created.Number.String()),
			models.UpdateArticleRequest{State: &state})
		if err != nil {
			return &created, fmt.Errorf("set state of new article %s: %w", created.Number, err)
		}
		return &updated, nil
	}
	return &created, nil
}

// CreateDraft always appends the draft label, even if labels already has it.
func (s *articleService) CreateDraft(ctx context.Context, title, body string, labels []string) (*models.Issue, error) {
	withDraft := make([]string, 0, len(labels)+1)
	withDraft = append(withDraft, labels...)
	withDraft = append(withDraft, models.LabelDraft)

	return s.CreateArticle(ctx, models.CreateArticleRequest{
		Title:  title,
		Body:   body,
		Labels: withDraft,
		State:  string(models.StateClosed),
	})
}

func (s *articleService) UpdateArticle(ctx context.Context, number string, req models.UpdateArticleRequest) (*models.Issue, error) {
	if err := checkNumber(number); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", models.ErrValidation)
	}
	if req.State != nil && *req.State != string(models.StateOpen) && *req.State != string(models.StateClosed) {
		return nil, fmt.Errorf("%w: state must be open or closed", models.ErrValidation)
	}

	issue, err := client.Patch[models.Issue](ctx, s.client, s.ep.article(number), req)
	if err != nil {
		return nil, fmt.Errorf("update article %s: %w", number, err)
	}
	return &issue, nil
}

func (s *articleService) PublishArticle(ctx context.Context, number string) (*models.Issue, error) {
	return s.setState(ctx, number, models.StateOpen)
}

func (s *articleService) UnpublishArticle(ctx context.Context, number string) (*models.Issue, error) {
	if !s.ep.server() {
		if err := checkNumber(number); err != nil {
			return nil, err
		}
		issue, err := client.Post[models.Issue](ctx, s.client, s.ep.article(number)+"/unpublish", struct{}{})
		if err != nil {
			return nil, fmt.Errorf("unpublish article %s: %w", number, err)
		}
		return &issue, nil
	}
	return s.setState(ctx, number, models.StateClosed)
}

func (s *articleService) setState(ctx context.Context, number string, state models.IssueState) (*models.Issue, error) {
	st := string(state)
	return s.UpdateArticle(ctx, number, models.UpdateArticleRequest{State: &st})
}

// ArchiveArticle adds the archived label and then closes the article. The two
// steps are not atomic; a failure after the first yields *PartialArchiveError.
func (s *articleService) ArchiveArticle(ctx context.Context, number string) (*models.Issue, error) {
	if err := checkNumber(number); err != nil {
		return nil, err
	}

	if !s.ep.server() {
		issue, err := client.Post[models.Issue](ctx, s.client, s.ep.article(number)+"/archive", struct{}{})
		if err != nil {
			return nil, fmt.Errorf("archive article %s: %w", number, err)
		}
		return &issue, nil
	}

	if _, err := s.AddArticleLabels(ctx, number, []string{models.LabelArchived}); err != nil {
		return nil, fmt.Errorf("archive article %s: %w", number, err)
	}

	closed, err := s.setState(ctx, number, models.StateClosed)
	if err != nil {
		s.log.Error("article labeled archived but still open",
			logger.String("number", number), logger.Error(err))
		return nil, &PartialArchiveError{Number: number, Step: "close", Err: err}
	}
	return closed, nil
}

// SetArticleLabels replaces the whole label set.
func (s *articleService) SetArticleLabels(ctx context.Context, number string, labels []string) ([]models.Label, error) {
	return s.writeLabels(ctx, number, labels, true)
}

// AddArticleLabels adds to the existing label set.
func (s *articleService) AddArticleLabels(ctx context.Context, number string, labels []string) ([]models.Label, error) {
	return s.writeLabels(ctx, number, labels, false)
}

// SetArticlePriority replaces any priority label with priority (one of
// models.PriorityLabels, or empty to clear). The label set is only written
// when it actually changes.
func (s *articleService) SetArticlePriority(ctx context.Context, number, priority string) ([]models.Label, error) {
	if priority != "" && !models.IsPriorityLabel(priority) {
		return nil, fmt.Errorf("%w: priority must be one of %v", models.ErrValidation, models.PriorityLabels)
	}
	article, err := s.GetArticle(ctx, number)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("article %s: %w", number, models.ErrNotFound)
	}

	current := article.LabelNames()
	next := models.SetPriorityLabel(current, priority)
	if !models.LabelsChanged(next, current) {
		s.log.Debug("priority unchanged, skipping label update", logger.String("number", number))
		if article.Labels == nil {
			return []models.Label{}, nil
		}
		return article.Labels, nil
	}
	return s.SetArticleLabels(ctx, number, next)
}

func (s *articleService) writeLabels(ctx context.Context, number string, labels []string, replace bool) ([]models.Label, error) {
	if err := checkNumber(number); err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}

	req := models.LabelsRequest{Labels: labels}
	var (
		out []models.Label
		err error
	)
	if replace {
		out, err = client.Put[[]models.Label](ctx, s.client, s.ep.labels(number), req)
	} else {
		out, err = client.Post[[]models.Label](ctx, s.client, s.ep.labels(number), req)
	}
	if err != nil {
		return nil, fmt.Errorf("update labels of article %s: %w", number, err)
	}
	if out == nil {
		out = []models.Label{}
	}
	return out, nil
}

func (s *articleService) GetDraftArticles(ctx context.Context, filter models.ArticleFilter) []models.Issue {
	filter.State = string(models.StateClosed)
	filter.Labels = models.LabelDraft
	return s.GetArticles(ctx, filter)
}

func (s *articleService) GetPublishedArticles(ctx context.Context, filter models.ArticleFilter) []models.Issue {
	filter.State = string(models.StateOpen)
	return s.GetArticles(ctx, filter)
}

func (s *articleService) GetArchivedArticles(ctx context.Context, filter models.ArticleFilter) []models.Issue {
	filter.State = string(models.StateClosed)
	filter.Labels = models.LabelArchived
	return s.GetArticles(ctx, filter)
}

func checkNumber(number string) error {
	if !models.ValidIssueNumber(number) {
		return fmt.Errorf("%w: invalid article number %q", models.ErrValidation, number)
	}
	return nil
}
