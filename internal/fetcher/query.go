package fetcher

import (
	"encoding/json"
	"fmt"
)

// Page sizes baked into the query. Anything past them is silently dropped.
const (
	discussionsPerPage = 100
	commentsPerPage    = 100
	repliesPerPage     = 10
)

// discussionsQuery is sent verbatim by every JSON transport.
var discussionsQuery = fmt.Sprintf(`query($owner: String!, $repo: String!) {
  repository(owner: $owner, name: $repo) {
    discussions(first: %d) {
      nodes {
        number
        title
        url
        comments(first: %d) {
          nodes {
            id
            body
            bodyHTML
            createdAt
            updatedAt
            author {
              login
              url
              avatarUrl
            }
            replies(first: %d) {
              nodes {
                id
                body
                bodyHTML
                createdAt
                updatedAt
                author {
                  login
                  url
                  avatarUrl
                }
              }
            }
          }
        }
      }
    }
  }
}`, discussionsPerPage, commentsPerPage, repliesPerPage)

// graphQLRequest is the POST body of a GraphQL request.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

func newRequest(owner, repo string) graphQLRequest {
	return graphQLRequest{
		Query: discussionsQuery,
		Variables: map[string]any{
			"owner": owner,
			"repo":  repo,
		},
	}
}

// queryData is the "data" object of a discussionsQuery response.
type queryData struct {
	Repository *rawRepository `json:"repository"`
}

type rawRepository struct {
	Discussions *rawDiscussions `json:"discussions"`
}

type rawDiscussions struct {
	Nodes []rawDiscussion `json:"nodes"`
}

type rawDiscussion struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Comments struct {
		Nodes []rawComment `json:"nodes"`
	} `json:"comments"`
}

type rawComment struct {
	rawReply
	Replies struct {
		Nodes []rawReply `json:"nodes"`
	} `json:"replies"`
}

type rawReply struct {
	ID        string     `json:"id"`
	Body      string     `json:"body"`
	BodyHTML  string     `json:"bodyHTML"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
	Author    *rawAuthor `json:"author"`
}

type rawAuthor struct {
	Login     string `json:"login"`
	URL       string `json:"url"`
	AvatarURL string `json:"avatarUrl"`
}

// validate reports ErrNoData unless d carries repository.discussions.
func (d *queryData) validate() error {
	if d == nil || d.Repository == nil || d.Repository.Discussions == nil {
		return ErrNoData
	}
	return nil
}

// decodeEnvelope decodes a {data, errors} response body.
// A non-empty errors array fails the whole response, even if data is present.
func decodeEnvelope(body []byte) (*queryData, error) {
	var envelope struct {
		Data   *queryData `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &GraphQLQueryError{Messages: msgs}
	}
	if err := envelope.Data.validate(); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
