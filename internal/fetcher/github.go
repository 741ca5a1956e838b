package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// GitHubV4Transport runs the discussions query through the typed githubv4 client.
type GitHubV4Transport struct {
	client *githubv4.Client
	slog   *slog.Logger
}

// NewGitHubV4Transport returns a githubv4 transport for endpoint.
// An empty endpoint means api.github.com.
func NewGitHubV4Transport(endpoint, token string, timeout time.Duration, lg *slog.Logger) *GitHubV4Transport {
	if lg == nil {
		lg = slog.Default()
	}
	hc := &http.Client{Timeout: timeout}
	if token != "" {
		src := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		hc = oauth2.NewClient(context.Background(), src)
		hc.Timeout = timeout
	}

	client := githubv4.NewClient(hc)
	if endpoint != "" && endpoint != DefaultEndpoint {
		client = githubv4.NewEnterpriseClient(endpoint, hc)
	}

	return &GitHubV4Transport{
		client: client,
		slog:   lg,
	}
}

func (*GitHubV4Transport) Name() string { return "githubv4" }

type v4Query struct {
	Repository struct {
		Discussions struct {
			Nodes []v4Discussion
		} `graphql:"discussions(first: $discussionsPerPage)"`
	} `graphql:"repository(owner: $owner, name: $repo)"`
}

type v4Discussion struct {
	Number   int
	Title    string
	URL      string `graphql:"url"`
	Comments struct {
		Nodes []v4Comment
	} `graphql:"comments(first: $commentsPerPage)"`
}

type v4Comment struct {
	ID        string `graphql:"id"`
	Body      string
	BodyHTML  string `graphql:"bodyHTML"`
	CreatedAt string
	UpdatedAt string
	Author    v4Author
	Replies   struct {
		Nodes []v4Reply
	} `graphql:"replies(first: $repliesPerPage)"`
}

type v4Reply struct {
	ID        string `graphql:"id"`
	Body      string
	BodyHTML  string `graphql:"bodyHTML"`
	CreatedAt string
	UpdatedAt string
	Author    v4Author
}

type v4Author struct {
	Login     string
	URL       string `graphql:"url"`
	AvatarURL string `graphql:"avatarUrl"`
}

// Fetch runs the query. Any partially decoded data is dropped on error.
func (t *GitHubV4Transport) Fetch(ctx context.Context, owner, repo string) (*queryData, error) {
	var q v4Query
	variables := map[string]interface{}{
		"owner":              githubv4.String(owner),
		"repo":               githubv4.String(repo),
		"discussionsPerPage": githubv4.Int(discussionsPerPage),
		"commentsPerPage":    githubv4.Int(commentsPerPage),
		"repliesPerPage":     githubv4.Int(repliesPerPage),
	}

	if err := t.client.Query(ctx, &q, variables); err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, &NetworkError{Err: err}
		}
		t.slog.Error("githubv4 query failed", "err", err)
		return nil, &GraphQLQueryError{Messages: []string{err.Error()}}
	}
	return q.convert(), nil
}

func (q *v4Query) convert() *queryData {
	discussions := &rawDiscussions{}
	for _, d := range q.Repository.Discussions.Nodes {
		rd := rawDiscussion{
			Number: d.Number,
			Title:  d.Title,
			URL:    d.URL,
		}
		for _, c := range d.Comments.Nodes {
			rc := rawComment{
				rawReply: rawReply{
					ID:        c.ID,
					Body:      c.Body,
					BodyHTML:  c.BodyHTML,
					CreatedAt: c.CreatedAt,
					UpdatedAt: c.UpdatedAt,
					Author:    c.Author.convert(),
				},
			}
			for _, r := range c.Replies.Nodes {
				rc.Replies.Nodes = append(rc.Replies.Nodes, rawReply{
					ID:        r.ID,
					Body:      r.Body,
					BodyHTML:  r.BodyHTML,
					CreatedAt: r.CreatedAt,
					UpdatedAt: r.UpdatedAt,
					Author:    r.Author.convert(),
				})
			}
			rd.Comments.Nodes = append(rd.Comments.Nodes, rc)
		}
		discussions.Nodes = append(discussions.Nodes, rd)
	}
	return &queryData{Repository: &rawRepository{Discussions: discussions}}
}

// convert returns nil for the zero author GitHub sends for deleted accounts.
func (a v4Author) convert() *rawAuthor {
	if a.Login == "" {
		return nil
	}
	return &rawAuthor{
		Login:     a.Login,
		URL:       a.URL,
		AvatarURL: a.AvatarURL,
	}
}
