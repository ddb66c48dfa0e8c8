package models

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthStatusResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *AuthUser `json:"user"`
}

type CreateArticleRequest struct {
	Title  string   `json:"title" binding:"required"`
	Body   string   `json:"body" binding:"required"`
	Labels []string `json:"labels,omitempty"`
	State  string   `json:"state,omitempty" binding:"omitempty,oneof=open closed"`
}

// UpdateArticleRequest is a partial update; nil fields are left untouched upstream.
type UpdateArticleRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
	State *string `json:"state,omitempty"`
}

func (r UpdateArticleRequest) Empty() bool {
	return r.Title == nil && r.Body == nil && r.State == nil
}

// PatchArticleRequest carries the article number in the body (PATCH /api/articles).
type PatchArticleRequest struct {
	Number IssueNumber `json:"number" binding:"required"`
	UpdateArticleRequest
}

type LabelsRequest struct {
	Labels []string `json:"labels" binding:"required"`
}

type CreateCommentRequest struct {
	IssueNumber IssueNumber `json:"issueNumber" binding:"required"`
	Body        string      `json:"body" binding:"required"`
}

type CommentBody struct {
	Body string `json:"body"`
}

// ArticleFilter selects a page of articles. Zero values are omitted from the query.
type ArticleFilter struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	State     string `form:"state"`
	Keyword   string `form:"keyword"`
	Labels    string `form:"labels"`
	Authors   string `form:"authors"`
	Assignees string `form:"assignees"`
	Priority  string `form:"priority"`
	OrderBy   string `form:"orderBy"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}
