package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/alice":
			fmt.Fprint(w, `{"login":"alice","name":"Alice","html_url":"https://github.com/alice"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(context.Background(), "token").WithBaseURL(srv.URL)

	account, err := client.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Login)
	assert.Equal(t, "https://github.com/alice", account.HTMLURL)

	_, err = client.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_IsOrgMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orgs/ataleek/public_members/alice":
			w.WriteHeader(http.StatusNoContent)
		case "/orgs/ataleek/public_members/eve":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(context.Background(), "token").WithBaseURL(srv.URL)

	member, err := client.IsOrgMember(context.Background(), "ataleek", "alice")
	require.NoError(t, err)
	assert.True(t, member)

	member, err = client.IsOrgMember(context.Background(), "ataleek", "bob")
	require.NoError(t, err)
	assert.False(t, member)

	// A transient failure must not read as "not a member".
	_, err = client.IsOrgMember(context.Background(), "ataleek", "eve")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_CreateFork(t *testing.T) {
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	client := NewClient(context.Background(), "token").WithBaseURL(srv.URL)

	err := client.CreateFork(context.Background(), "alice", "proj")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/repos/alice/proj/forks", gotPath)
}

func TestClient_CreateIssue(t *testing.T) {
	var got NewIssue

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/ataleek/ataleek/issues", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	client := NewClient(context.Background(), "token").WithBaseURL(srv.URL)

	issue := NewIssue{
		Title:  "https://github.com/alice/proj",
		Body:   "please review",
		Labels: []string{"New Project"},
	}
	require.NoError(t, client.CreateIssue(context.Background(), "ataleek", "ataleek", issue))
	assert.Equal(t, issue, got)
}

func TestClient_GetTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/alice/proj/git/trees/master", r.URL.Path)
		fmt.Fprint(w, `{"tree":[{"path":"README.md","type":"blob"},{"path":"code","type":"tree"}]}`)
	}))
	defer srv.Close()

	client := NewClient(context.Background(), "token").WithBaseURL(srv.URL)

	tree, err := client.GetTree(context.Background(), "alice", "proj", "master")
	require.NoError(t, err)
	assert.Equal(t, []TreeNode{
		{Path: "README.md", Type: "blob"},
		{Path: "code", Type: "tree"},
	}, tree)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(context.Background(), "token").WithBaseURL(srv.URL)

	_, err := client.GetUser(context.Background(), "alice")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
