package entities

// Discussions maps a discussion number to its discussion.
type Discussions map[int]Discussion

type Discussion struct {
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Comments []Comment `json:"comments"`
}

// Comment is a top-level comment on a discussion. Timestamps are kept
// as the ISO-8601 strings returned by GitHub.
type Comment struct {
	ID        string  `json:"id"`
	Body      string  `json:"body"`
	BodyHTML  string  `json:"bodyHTML"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	Author    *Author `json:"author"`
	Replies   []Reply `json:"replies"`
}

// Reply is a comment nested under a Comment. Replies do not nest further.
type Reply struct {
	ID        string  `json:"id"`
	Body      string  `json:"body"`
	BodyHTML  string  `json:"bodyHTML"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	Author    *Author `json:"author"`
}

// Author is nil for deleted accounts.
type Author struct {
	Login     string `json:"login"`
	URL       string `json:"url"`
	AvatarURL string `json:"avatarUrl"`
}

// Count returns the number of comments and replies across all discussions.
func (d Discussions) Count() (comments, replies int) {
	for _, disc := range d {
		comments += len(disc.Comments)
		for _, c := range disc.Comments {
			replies += len(c.Replies)
		}
	}
	return comments, replies
}
