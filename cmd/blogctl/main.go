// Command blogctl reads and edits the blog through a running server's /api
// routes. It never sees the upstream token.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"issue-blog-cms/cache"
	"issue-blog-cms/client"
	"issue-blog-cms/logger"
	"issue-blog-cms/models"
	"issue-blog-cms/repositories"
	"issue-blog-cms/services"
)

const usage = `usage: blogctl [flags] <command> [args]

commands:
  articles [-state s] [-keyword k] [-labels a,b] [-page n] [-page-size n]
  article <number>
  comments <number>
  tags
  drafts | archived
  dashboard
  settings
  status
  draft -title t -body b [-labels a,b]
  publish | unpublish | archive <number>
  labels <number> a,b
  priority <number> P0|P1|P2|P3|none
  comment <number> <body>
`

type cli struct {
	out      io.Writer
	client   *client.Client
	checker  *client.AuthStatusChecker
	articles services.ArticleService
	comments services.CommentService
	tags     services.TagService
	settings services.SettingsService
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "blogctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("blogctl", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	server := fs.String("server", envOr("BLOG_SERVER_URL", "http://localhost:8080"), "blog server origin")
	user := fs.String("user", os.Getenv("BLOG_ADMIN_USERNAME"), "admin username, required for writes")
	password := fs.String("password", os.Getenv("BLOG_ADMIN_PASSWORD"), "admin password")
	cachePath := fs.String("cache", defaultCachePath(), "settings cache file, empty to disable")
	logLevel := fs.String("log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	c, err := newCLI(*server, *cachePath, logger.New(*logLevel, true), out)
	if err != nil {
		return err
	}
	if *user != "" {
		if err := c.login(ctx, *user, *password); err != nil {
			return err
		}
	}
	return c.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

func newCLI(server, cachePath string, log logger.Logger, out io.Writer) (*cli, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	apiClient := client.New(
		client.NewProxyTransport(server, &http.Client{Jar: jar}),
		client.WithLogger(log),
	)

	var opts []services.SettingsOption
	if cachePath != "" {
		opts = append(opts, services.WithPersistentCache(cache.NewFileStore(cachePath)))
	}

	articles := services.NewArticleService(apiClient, log)
	return &cli{
		out:      out,
		client:   apiClient,
		checker:  client.NewAuthStatusChecker(apiClient),
		articles: articles,
		comments: services.NewCommentService(apiClient, log),
		tags:     services.NewTagService(apiClient, articles, log),
		settings: services.NewSettingsService(repositories.NewSettingsRemoteRepository(apiClient), nil, log, opts...),
	}, nil
}

func (c *cli) login(ctx context.Context, user, password string) error {
	var resp models.SuccessResponse
	err := c.client.PostJSON(ctx, "/api/auth/login", models.LoginRequest{Username: user, Password: password}, &resp)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.checker.Invalidate()
	return nil
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "articles":
		return c.listArticles(ctx, args)
	case "article":
		number, err := numberArg(args)
		if err != nil {
			return err
		}
		article, err := c.articles.GetArticle(ctx, number)
		if err != nil {
			return err
		}
		if article == nil {
			return fmt.Errorf("article %s not found", number)
		}
		return c.print(article)
	case "comments":
		number, err := numberArg(args)
		if err != nil {
			return err
		}
		comments, err := c.comments.ListComments(ctx, number, 1, 30)
		if err != nil {
			return err
		}
		return c.print(comments)
	case "tags":
		return c.print(c.tags.GetTags(ctx))
	case "drafts":
		return c.print(c.articles.GetDraftArticles(ctx, models.ArticleFilter{Page: 1, PageSize: 100}))
	case "archived":
		return c.print(c.articles.GetArchivedArticles(ctx, models.ArticleFilter{Page: 1, PageSize: 100}))
	case "dashboard":
		return c.print(services.NewDashboardService(c.articles, c.tags).Load(ctx))
	case "settings":
		return c.print(c.settings.GetSettings(ctx))
	case "status":
		status, err := c.checker.Check(ctx, false)
		if err != nil {
			return err
		}
		return c.print(status)
	case "draft":
		return c.createDraft(ctx, args)
	case "publish", "unpublish", "archive":
		return c.transition(ctx, cmd, args)
	case "labels":
		if len(args) != 2 {
			return errors.New("labels needs <number> and a comma separated label list")
		}
		labels, err := c.articles.SetArticleLabels(ctx, args[0], models.SplitLabels(args[1]))
		if err != nil {
			return err
		}
		return c.print(labels)
	case "priority":
		if len(args) != 2 {
			return errors.New("priority needs <number> and one of P0..P3 or none")
		}
		priority := args[1]
		if priority == "none" {
			priority = ""
		}
		labels, err := c.articles.SetArticlePriority(ctx, args[0], priority)
		if err != nil {
			return err
		}
		return c.print(labels)
	case "comment":
		if len(args) < 2 {
			return errors.New("comment needs <number> <body>")
		}
		comment, err := c.comments.CreateComment(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return c.print(comment)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) listArticles(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("articles", flag.ContinueOnError)
	var filter models.ArticleFilter
	fs.StringVar(&filter.State, "state", "open", "open, closed or all")
	fs.StringVar(&filter.Keyword, "keyword", "", "search keyword")
	fs.StringVar(&filter.Labels, "labels", "", "comma separated labels, all required")
	fs.IntVar(&filter.Page, "page", 1, "page number")
	fs.IntVar(&filter.PageSize, "page-size", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	articles, err := c.articles.ListArticles(ctx, filter)
	if err != nil {
		return err
	}
	return c.print(articles)
}

func (c *cli) createDraft(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("draft", flag.ContinueOnError)
	title := fs.String("title", "", "article title")
	body := fs.String("body", "", "article body")
	labels := fs.String("labels", "", "comma separated labels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	article, err := c.articles.CreateDraft(ctx, *title, *body, models.SplitLabels(*labels))
	if err != nil {
		return err
	}
	return c.print(article)
}

func (c *cli) transition(ctx context.Context, cmd string, args []string) error {
	number, err := numberArg(args)
	if err != nil {
		return err
	}

	var article *models.Issue
	switch cmd {
	case "publish":
		article, err = c.articles.PublishArticle(ctx, number)
	case "unpublish":
		article, err = c.articles.UnpublishArticle(ctx, number)
	case "archive":
		article, err = c.articles.ArchiveArticle(ctx, number)
	}
	if err != nil {
		return err
	}
	return c.print(article)
}

func (c *cli) print(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func numberArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("expected a single article number")
	}
	if _, err := strconv.ParseUint(args[0], 10, 64); err != nil {
		return "", fmt.Errorf("invalid article number %q", args[0])
	}
	return args[0], nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "blogctl", "settings-cache.json")
}
