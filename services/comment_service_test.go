package services

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue-blog-cms/models"
)

func TestCommentsRoundTrip(t *testing.T) {
	f, c := newUpstream(t)
	f.Seed(models.Issue{Title: "t"})
	svc := NewCommentService(c, nopLogger())
	ctx := context.Background()

	created, err := svc.CreateComment(ctx, "1", "nice post")
	require.NoError(t, err)
	assert.Equal(t, "nice post", created.Body)

	comments := svc.GetComments(ctx, "1", 1, 20)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice post", comments[0].Body)

	reqs := f.Requests()
	q, _ := url.ParseQuery(reqs[len(reqs)-1].Query)
	assert.Equal(t, "20", q.Get("page_size"))
	assert.Equal(t, "1", q.Get("page"))
}

func TestGetCommentsDegrades(t *testing.T) {
	f, c := newUpstream(t)
	f.Fail(http.MethodGet, "/comments", http.StatusInternalServerError, "boom")
	svc := NewCommentService(c, nopLogger())

	comments := svc.GetComments(context.Background(), "1", 1, 10)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)

	// a missing article is also just an empty list for readers
	f.ClearFailures()
	assert.Empty(t, svc.GetComments(context.Background(), "999", 1, 10))
}

func TestCreateCommentPropagatesErrors(t *testing.T) {
	f, c := newUpstream(t)
	svc := NewCommentService(c, nopLogger())
	ctx := context.Background()

	_, err := svc.CreateComment(ctx, "1", "hello")
	require.Error(t, err, "article does not exist")
	assert.Equal(t, 1, f.CountRequests(http.MethodPost, "/-/issues/1/comments"))

	_, err = svc.CreateComment(ctx, "1", "   ")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestProxyCommentRoutes(t *testing.T) {
	c, calls := newProxyRecorder(t, http.StatusCreated, `{"id":1,"body":"hi"}`)
	svc := NewCommentService(c, nopLogger())

	_, err := svc.CreateComment(context.Background(), "5", "hi")
	require.NoError(t, err)
	svc.GetComments(context.Background(), "5", 2, 10)

	got := calls()
	require.Len(t, got, 2)
	assert.Equal(t, "/api/comments", got[0].Path)
	assert.JSONEq(t, `{"issueNumber":"5","body":"hi"}`, got[0].Body)
	assert.Equal(t, "/api/articles/5/comments", got[1].Path)
	q, _ := url.ParseQuery(got[1].Query)
	assert.Equal(t, "10", q.Get("pageSize"))
}
