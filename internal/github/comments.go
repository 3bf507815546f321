package github

import (
	"slices"
	"time"
)

// commentTimeLayout is the fixed UTC format GitHub uses for comment
// timestamps.
const commentTimeLayout = "2006-01-02T15:04:05Z"

// Comment is one issue comment, materialized for the duration of a
// single webhook reaction. Never persisted.
type Comment struct {
	User      string
	Body      string
	UpdatedAt time.Time
}

// FilterComments keeps the comments whose author is in authors and
// whose body is in bodies. An empty allow-list skips that dimension;
// with both set, a comment must pass both.
func FilterComments(comments []Comment, authors, bodies []string) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if len(authors) > 0 && !slices.Contains(authors, c.User) {
			continue
		}
		if len(bodies) > 0 && !slices.Contains(bodies, c.Body) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SortComments orders comments ascending by update time, in place.
func SortComments(comments []Comment) {
	slices.SortStableFunc(comments, func(a, b Comment) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
}
