package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(commentTimeLayout, value)
	require.NoError(t, err)
	return parsed
}

func TestFilterComments(t *testing.T) {
	comments := []Comment{
		{User: "alice", Body: "x"},
		{User: "alice", Body: "y"},
		{User: "bob", Body: "x"},
		{User: "bob", Body: "y"},
	}

	tests := []struct {
		name     string
		authors  []string
		bodies   []string
		expected []Comment
	}{
		{
			name:     "no filters keeps everything",
			expected: comments,
		},
		{
			name:    "author only",
			authors: []string{"alice"},
			expected: []Comment{
				{User: "alice", Body: "x"},
				{User: "alice", Body: "y"},
			},
		},
		{
			name:   "body only",
			bodies: []string{"x"},
			expected: []Comment{
				{User: "alice", Body: "x"},
				{User: "bob", Body: "x"},
			},
		},
		{
			name:    "author and body must both match",
			authors: []string{"alice"},
			bodies:  []string{"x"},
			expected: []Comment{
				{User: "alice", Body: "x"},
			},
		},
		{
			name:     "no comment passes both",
			authors:  []string{"bob"},
			bodies:   []string{"z"},
			expected: []Comment{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilterComments(comments, tt.authors, tt.bodies))
		})
	}
}

func TestSortComments(t *testing.T) {
	comments := []Comment{
		{Body: "third", UpdatedAt: mustParseTime(t, "2024-03-01T12:00:00Z")},
		{Body: "first", UpdatedAt: mustParseTime(t, "2024-01-01T12:00:00Z")},
		{Body: "second", UpdatedAt: mustParseTime(t, "2024-02-01T12:00:00Z")},
	}

	SortComments(comments)

	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "second", comments[1].Body)
	assert.Equal(t, "third", comments[2].Body)
}

func TestClient_ListComments(t *testing.T) {
	var srv *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"user":{"login":"bob"},"body":"second","updated_at":"2024-01-02T00:00:00Z"}]`)
			return
		}

		w.Header().Set("Link", fmt.Sprintf(`<%s/comments?page=2&per_page=100>; rel="next"`, srv.URL))
		fmt.Fprint(w, `[{"user":{"login":"alice"},"body":"first","updated_at":"2024-01-01T00:00:00Z"}]`)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(context.Background(), "token")

	comments, err := client.ListComments(context.Background(), srv.URL+"/comments")
	require.NoError(t, err)

	assert.Equal(t, []Comment{
		{User: "alice", Body: "first", UpdatedAt: mustParseTime(t, "2024-01-01T00:00:00Z")},
		{User: "bob", Body: "second", UpdatedAt: mustParseTime(t, "2024-01-02T00:00:00Z")},
	}, comments)
}

func TestClient_ListComments_BadTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"user":{"login":"alice"},"body":"hi","updated_at":"yesterday"}]`)
	}))
	defer srv.Close()

	client := NewClient(context.Background(), "token")

	_, err := client.ListComments(context.Background(), srv.URL+"/comments")
	assert.Error(t, err)
}

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "empty header",
			header:   "",
			expected: "",
		},
		{
			name:     "next present",
			header:   `<https://api.github.com/x?page=2>; rel="next", <https://api.github.com/x?page=5>; rel="last"`,
			expected: "https://api.github.com/x?page=2",
		},
		{
			name:     "only prev and last",
			header:   `<https://api.github.com/x?page=1>; rel="prev", <https://api.github.com/x?page=5>; rel="last"`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nextPageURL(tt.header))
		})
	}
}
