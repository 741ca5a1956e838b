package fetcher

import "discussioncomments/entities"

// Normalize reshapes a raw query response into discussions keyed by number.
// Comment and reply order is kept as returned by the server.
func Normalize(d *queryData) entities.Discussions {
	out := make(entities.Discussions)
	if d.validate() != nil {
		return out
	}
	for _, node := range d.Repository.Discussions.Nodes {
		comments := make([]entities.Comment, 0, len(node.Comments.Nodes))
		for _, c := range node.Comments.Nodes {
			comments = append(comments, c.convert())
		}
		out[node.Number] = entities.Discussion{
			Title:    node.Title,
			URL:      node.URL,
			Comments: comments,
		}
	}
	return out
}

func (c *rawComment) convert() entities.Comment {
	replies := make([]entities.Reply, 0, len(c.Replies.Nodes))
	for _, r := range c.Replies.Nodes {
		replies = append(replies, r.convert())
	}
	return entities.Comment{
		ID:        c.ID,
		Body:      c.Body,
		BodyHTML:  c.BodyHTML,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Author:    c.Author.convert(),
		Replies:   replies,
	}
}

func (r *rawReply) convert() entities.Reply {
	return entities.Reply{
		ID:        r.ID,
		Body:      r.Body,
		BodyHTML:  r.BodyHTML,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Author:    r.Author.convert(),
	}
}

func (a *rawAuthor) convert() *entities.Author {
	if a == nil {
		return nil
	}
	return &entities.Author{
		Login:     a.Login,
		URL:       a.URL,
		AvatarURL: a.AvatarURL,
	}
}
