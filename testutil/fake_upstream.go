// Package testutil provides an in-memory Gitea-style issue tracker for tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"issue-blog-cms/models"
)

// RecordedRequest is one request seen by the fake upstream.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Accept        string
}

type failure struct {
	method string
	suffix string
	status int
	body   string
}

// FakeUpstream serves /{repo}/-/issues... from memory. Issue creation ignores
// a requested state, like real trackers do.
type FakeUpstream struct {
	Server *httptest.Server
	Repo   string

	mu       sync.Mutex
	issues   map[int]*models.Issue
	order    []int
	comments map[int][]models.Comment
	colors   map[string]string
	next     int
	requests []RecordedRequest
	failures []failure
	rawList  string
}

func NewFakeUpstream(repo string) *FakeUpstream {
	gin.SetMode(gin.TestMode)

	f := &FakeUpstream{
		Repo:     repo,
		issues:   make(map[int]*models.Issue),
		comments: make(map[int][]models.Comment),
		colors:   make(map[string]string),
		next:     1,
	}

	r := gin.New()
	r.Use(f.record)
	g := r.Group("/" + repo + "/-/issues")
	g.GET("", f.list)
	g.POST("", f.create)
	g.GET("/:number", f.get)
	g.PATCH("/:number", f.patch)
	g.POST("/:number/labels", f.addLabels)
	g.PUT("/:number/labels", f.setLabels)
	g.GET("/:number/comments", f.listComments)
	g.POST("/:number/comments", f.createComment)

	f.Server = httptest.NewServer(r)
	return f
}

func (f *FakeUpstream) Close() { f.Server.Close() }

// URL is the API base URL (without the repo segment).
func (f *FakeUpstream) URL() string { return f.Server.URL }

// SetLabelColor registers the color returned for a label name.
func (f *FakeUpstream) SetLabelColor(name, color string) {
	f.mu.Lock()
	f.colors[name] = color
	f.mu.Unlock()
}

// Fail makes every request whose method matches and whose path ends with
// suffix answer with status. An empty method matches all methods.
func (f *FakeUpstream) Fail(method, suffix string, status int, body string) {
	f.mu.Lock()
	f.failures = append(f.failures, failure{method: method, suffix: suffix, status: status, body: body})
	f.mu.Unlock()
}

// ClearFailures removes injected failures.
func (f *FakeUpstream) ClearFailures() {
	f.mu.Lock()
	f.failures = nil
	f.mu.Unlock()
}

// SetRawList makes the issue list endpoint return body verbatim.
func (f *FakeUpstream) SetRawList(body string) {
	f.mu.Lock()
	f.rawList = body
	f.mu.Unlock()
}

// Seed inserts an issue as-is, assigning the next number when it has none.
func (f *FakeUpstream) Seed(issue models.Issue) models.Issue {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.next
	if issue.Number != "" {
		n, _ = strconv.Atoi(string(issue.Number))
	}
	if n >= f.next {
		f.next = n + 1
	}
	issue.Number = models.IssueNumber(strconv.Itoa(n))
	if issue.State == "" {
		issue.State = models.StateOpen
	}
	if issue.Labels == nil {
		issue.Labels = []models.Label{}
	}
	if issue.Assignees == nil {
		issue.Assignees = []models.Author{}
	}
	cp := issue
	f.issues[n] = &cp
	f.order = append(f.order, n)
	return cp
}

// Issue returns a copy of the stored issue.
func (f *FakeUpstream) Issue(number string) (models.Issue, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, _ := strconv.Atoi(number)
	is, ok := f.issues[n]
	if !ok {
		return models.Issue{}, false
	}
	return cloneIssue(is), true
}

// Requests returns the requests seen so far.
func (f *FakeUpstream) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// CountRequests counts requests with the given method whose path ends with suffix.
func (f *FakeUpstream) CountRequests(method, suffix string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && strings.HasSuffix(r.Path, suffix) {
			n++
		}
	}
	return n
}

func (f *FakeUpstream) record(c *gin.Context) {
	req := c.Request
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        req.Method,
		Path:          req.URL.Path,
		Query:         req.URL.RawQuery,
		Authorization: req.Header.Get("Authorization"),
		ContentType:   req.Header.Get("Content-Type"),
		Accept:        req.Header.Get("Accept"),
	})
	failures := append([]failure(nil), f.failures...)
	f.mu.Unlock()

	for _, fl := range failures {
		if (fl.method == "" || fl.method == req.Method) && strings.HasSuffix(req.URL.Path, fl.suffix) {
			c.String(fl.status, fl.body)
			c.Abort()
			return
		}
	}
	c.Next()
}

func (f *FakeUpstream) list(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rawList != "" {
		c.Data(http.StatusOK, "application/json", []byte(f.rawList))
		return
	}

	state := c.Query("state")
	keyword := strings.ToLower(c.Query("keyword"))
	wanted := models.SplitLabels(c.Query("labels"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	matched := make([]models.Issue, 0)
	for i := len(f.order) - 1; i >= 0; i-- {
		is := f.issues[f.order[i]]
		if state != "" && state != "all" && string(is.State) != state {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(is.Title+" "+is.Body), keyword) {
			continue
		}
		if !hasAll(is, wanted) {
			continue
		}
		matched = append(matched, cloneIssue(is))
	}

	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	c.JSON(http.StatusOK, matched[start:end])
}

func (f *FakeUpstream) get(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	is, ok := f.lookup(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "issue not found"})
		return
	}
	c.JSON(http.StatusOK, cloneIssue(is))
}

func (f *FakeUpstream) create(c *gin.Context) {
	var req struct {
		Title  string   `json:"title"`
		Body   string   `json:"body"`
		Labels []string `json:"labels"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "title required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.next
	f.next++
	is := &models.Issue{
		Number:    models.IssueNumber(strconv.Itoa(n)),
		State:     models.StateOpen,
		Title:     req.Title,
		Body:      req.Body,
		Author:    models.Author{Username: "blog-bot", Nickname: "Blog Bot"},
		Assignees: []models.Author{},
		Labels:    f.labels(req.Labels),
		CreatedAt: "2024-01-01T00:00:00Z",
		UpdatedAt: "2024-01-01T00:00:00Z",
	}
	f.issues[n] = is
	f.order = append(f.order, n)
	c.JSON(http.StatusCreated, cloneIssue(is))
}

func (f *FakeUpstream) patch(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	is, ok := f.lookup(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "issue not found"})
		return
	}
	if v, ok := req["title"].(string); ok {
		is.Title = v
	}
	if v, ok := req["body"].(string); ok {
		is.Body = v
	}
	if v, ok := req["state"].(string); ok {
		is.State = models.IssueState(v)
	}
	c.JSON(http.StatusOK, cloneIssue(is))
}

func (f *FakeUpstream) addLabels(c *gin.Context) {
	var req models.LabelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	is, ok := f.lookup(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "issue not found"})
		return
	}
	for _, l := range f.labels(req.Labels) {
		if !is.HasLabel(l.Name) {
			is.Labels = append(is.Labels, l)
		}
	}
	c.JSON(http.StatusOK, is.Labels)
}

func (f *FakeUpstream) setLabels(c *gin.Context) {
	var req models.LabelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	is, ok := f.lookup(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "issue not found"})
		return
	}
	is.Labels = f.labels(req.Labels)
	c.JSON(http.StatusOK, is.Labels)
}

func (f *FakeUpstream) listComments(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, _ := strconv.Atoi(c.Param("number"))
	if _, ok := f.issues[n]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "issue not found"})
		return
	}
	out := append([]models.Comment{}, f.comments[n]...)
	c.JSON(http.StatusOK, out)
}

func (f *FakeUpstream) createComment(c *gin.Context) {
	var req models.CommentBody
	if err := c.ShouldBindJSON(&req); err != nil || req.Body == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "body required"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n, _ := strconv.Atoi(c.Param("number"))
	is, ok := f.issues[n]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "issue not found"})
		return
	}
	cm := models.Comment{
		ID:        int64(len(f.comments[n]) + 1),
		Body:      req.Body,
		Author:    models.Author{Username: "blog-bot", Nickname: "Blog Bot"},
		CreatedAt: "2024-01-01T00:00:00Z",
		UpdatedAt: "2024-01-01T00:00:00Z",
	}
	f.comments[n] = append(f.comments[n], cm)
	is.CommentCount++
	c.JSON(http.StatusCreated, cm)
}

func (f *FakeUpstream) lookup(c *gin.Context) (*models.Issue, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return nil, false
	}
	is, ok := f.issues[n]
	return is, ok
}

func (f *FakeUpstream) labels(names []string) []models.Label {
	out := make([]models.Label, 0, len(names))
	for _, name := range names {
		color, ok := f.colors[name]
		if !ok {
			color = "cccccc"
		}
		out = append(out, models.Label{Name: name, Color: color})
	}
	return out
}

func hasAll(is *models.Issue, names []string) bool {
	for _, n := range names {
		if !is.HasLabel(n) {
			return false
		}
	}
	return true
}

func cloneIssue(is *models.Issue) models.Issue {
	cp := *is
	cp.Labels = append([]models.Label{}, is.Labels...)
	cp.Assignees = append([]models.Author{}, is.Assignees...)
	return cp
}
