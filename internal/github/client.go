package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "https://api.github.com"

	// topicsAcceptHeader opts in to repository topics in listing
	// responses.
	topicsAcceptHeader = "application/vnd.github.mercy-preview+json"
)

// ErrNotFound is returned for 404 responses. Transport failures and
// other non-2xx statuses come back as distinct wrapped errors so
// callers can tell "does not exist" from "GitHub is unreachable".
var ErrNotFound = errors.New("github: not found")

// Account is the subset of a GitHub user object the portal reads.
type Account struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	HTMLURL   string `json:"html_url"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

// Repo is the subset of a GitHub repository object the portal reads.
type Repo struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	HTMLURL     string   `json:"html_url"`
	Description string   `json:"description"`
	Fork        bool     `json:"fork"`
	Private     bool     `json:"private"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	Parent      *Repo    `json:"parent,omitempty"`
}

// TreeNode is one entry of a repository tree listing: a path plus its
// kind ("blob" or "tree").
type TreeNode struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

type NewIssue struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

type NewPull struct {
	Title string `json:"title"`
	Head  string `json:"head"`
	Base  string `json:"base"`
}

type Pull struct {
	HTMLURL string `json:"html_url"`
}

// Client calls the GitHub REST API with a fixed bearer token. The same
// type serves both the organization client (admin token, fixed for the
// process) and per-request user clients (session OAuth token).
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(ctx context.Context, accessToken string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return &Client{
		http:    oauth2.NewClient(ctx, src),
		baseURL: defaultBaseURL,
	}
}

// WithBaseURL points the client at a different API root. Used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// AuthenticatedUser returns the account the client's token belongs to.
func (c *Client) AuthenticatedUser(ctx context.Context) (*Account, error) {
	account := &Account{}
	if err := c.get(ctx, c.baseURL+"/user", "", account); err != nil {
		return nil, err
	}
	return account, nil
}

func (c *Client) GetUser(ctx context.Context, username string) (*Account, error) {
	account := &Account{}
	if err := c.get(ctx, fmt.Sprintf("%s/users/%s", c.baseURL, username), "", account); err != nil {
		return nil, err
	}
	return account, nil
}

// IsOrgMember reports whether username is a public member of org. Only
// a 404 means "not a member"; any other failure is surfaced so outages
// are not read as negative answers.
func (c *Client) IsOrgMember(ctx context.Context, org, username string) (bool, error) {
	err := c.get(ctx, fmt.Sprintf("%s/orgs/%s/public_members/%s", c.baseURL, org, username), "", nil)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) ListOrgRepos(ctx context.Context, org string) ([]Repo, error) {
	var repos []Repo
	if err := c.get(ctx, fmt.Sprintf("%s/orgs/%s/repos?per_page=100", c.baseURL, org), topicsAcceptHeader, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetRepo fetches a single repository. The response includes the parent
// repository when the fetched one is a fork.
func (c *Client) GetRepo(ctx context.Context, owner, repo string) (*Repo, error) {
	r := &Repo{}
	if err := c.get(ctx, fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo), "", r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetTree lists the root tree of a repository at the given ref.
func (c *Client) GetTree(ctx context.Context, owner, repo, ref string) ([]TreeNode, error) {
	var response struct {
		Tree []TreeNode `json:"tree"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/repos/%s/%s/git/trees/%s", c.baseURL, owner, repo, ref), "", &response); err != nil {
		return nil, err
	}
	return response.Tree, nil
}

// CreateFork forks owner/repo under the account the client's token
// belongs to (the organization, for the org client).
func (c *Client) CreateFork(ctx context.Context, owner, repo string) error {
	return c.post(ctx, fmt.Sprintf("%s/repos/%s/%s/forks", c.baseURL, owner, repo), nil, nil)
}

func (c *Client) CreateIssue(ctx context.Context, owner, repo string, issue NewIssue) error {
	return c.post(ctx, fmt.Sprintf("%s/repos/%s/%s/issues", c.baseURL, owner, repo), issue, nil)
}

func (c *Client) CreatePull(ctx context.Context, baseFullName string, pull NewPull) (*Pull, error) {
	created := &Pull{}
	if err := c.post(ctx, fmt.Sprintf("%s/repos/%s/pulls", c.baseURL, baseFullName), pull, created); err != nil {
		return nil, err
	}
	return created, nil
}

type wireComment struct {
	User struct {
		Login string `json:"login"`
	} `json:"user"`
	Body      string `json:"body"`
	UpdatedAt string `json:"updated_at"`
}

// ListComments fetches every comment of an issue, following pagination
// until the last page. commentsURL is the absolute comments_url from
// the webhook payload. A malformed timestamp fails the whole fetch.
func (c *Client) ListComments(ctx context.Context, commentsURL string) ([]Comment, error) {
	page, err := withPerPage(commentsURL)
	if err != nil {
		return nil, err
	}

	var comments []Comment
	for page != "" {
		var wire []wireComment
		next, err := c.getPage(ctx, page, &wire)
		if err != nil {
			return nil, err
		}

		for _, w := range wire {
			updatedAt, err := time.Parse(commentTimeLayout, w.UpdatedAt)
			if err != nil {
				return nil, errors.Wrapf(err, "comment timestamp %q", w.UpdatedAt)
			}
			comments = append(comments, Comment{
				User:      w.User.Login,
				Body:      w.Body,
				UpdatedAt: updatedAt,
			})
		}

		page = next
	}

	return comments, nil
}

func withPerPage(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "parse comments url %q", rawURL)
	}
	q := u.Query()
	q.Set("per_page", "100")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// getPage performs one GET and returns the rel="next" link, if any.
func (c *Client) getPage(ctx context.Context, rawURL string, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "github: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "github: GET %s", rawURL)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.MethodGet, rawURL); err != nil {
		return "", err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", errors.Wrapf(err, "github: decode GET %s", rawURL)
	}

	return nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" target from a Link header.
func nextPageURL(header string) string {
	for _, part := range strings.Split(header, ",") {
		sections := strings.SplitN(strings.TrimSpace(part), ";", 2)
		if len(sections) < 2 {
			continue
		}
		if strings.TrimSpace(sections[1]) != `rel="next"` {
			continue
		}
		return strings.Trim(strings.TrimSpace(sections[0]), "<>")
	}
	return ""
}

func (c *Client) get(ctx context.Context, rawURL, accept string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrap(err, "github: build request")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "github: GET %s", rawURL)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.MethodGet, rawURL); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "github: decode GET %s", rawURL)
	}
	return nil
}

func (c *Client) post(ctx context.Context, rawURL string, body, out any) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return errors.Wrap(err, "github: encode request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, &payload)
	if err != nil {
		return errors.Wrap(err, "github: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "github: POST %s", rawURL)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.MethodPost, rawURL); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "github: decode POST %s", rawURL)
	}
	return nil
}

func checkStatus(resp *http.Response, method, rawURL string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		return errors.Errorf("github: %s %s returned %d", method, rawURL, resp.StatusCode)
	}
	return nil
}
