package services

import (
	"net/url"
	"strconv"

	"issue-blog-cms/config"
	"issue-blog-cms/models"
)

// endpoints maps facade operations to request paths. The upstream tracker and
// the local proxy routes disagree on paths and on query parameter casing.
type endpoints struct {
	ctx config.ExecutionContext
}

func (e endpoints) server() bool { return e.ctx == config.ServerContext }

func (e endpoints) articleList(f models.ArticleFilter) string {
	base := "/api/articles/list"
	if e.server() {
		base = "/-/issues"
	}
	if q := e.filterQuery(f); q != "" {
		return base + "?" + q
	}
	return base
}

func (e endpoints) article(number string) string {
	if e.server() {
		return "/-/issues/" + url.PathEscape(number)
	}
	return "/api/articles/" + url.PathEscape(number)
}

func (e endpoints) articleCreate() string {
	if e.server() {
		return "/-/issues"
	}
	return "/api/articles"
}

func (e endpoints) labels(number string) string {
	return e.article(number) + "/labels"
}

func (e endpoints) comments(number string, page, pageSize int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set(e.pageSizeKey(), strconv.Itoa(pageSize))
	}
	path := e.article(number) + "/comments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return path
}

func (e endpoints) commentCreate(number string) string {
	if e.server() {
		return e.article(number) + "/comments"
	}
	return "/api/comments"
}

func (e endpoints) pageSizeKey() string {
	if e.server() {
		return "page_size"
	}
	return "pageSize"
}

func (e endpoints) orderByKey() string {
	if e.server() {
		return "order_by"
	}
	return "orderBy"
}

func (e endpoints) filterQuery(f models.ArticleFilter) string {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set(e.pageSizeKey(), strconv.Itoa(f.PageSize))
	}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("state", f.State)
	set("keyword", f.Keyword)
	set("labels", f.Labels)
	set("authors", f.Authors)
	set("assignees", f.Assignees)
	set("priority", f.Priority)
	set(e.orderByKey(), f.OrderBy)
	return q.Encode()
}
