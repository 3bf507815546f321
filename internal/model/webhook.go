package model

// WebhookEvent is the decoded shape of an inbound GitHub webhook
// payload. Only the fields the reactions read are declared; everything
// else in the delivery is ignored.
type WebhookEvent struct {
	Action      string              `json:"action"`
	Issue       *WebhookIssue       `json:"issue,omitempty"`
	PullRequest *WebhookPullRequest `json:"pull_request,omitempty"`
}

type WebhookIssue struct {
	Title       string      `json:"title"`
	CommentsURL string      `json:"comments_url"`
	User        WebhookUser `json:"user"`
}

type WebhookUser struct {
	Login string `json:"login"`
}

type WebhookPullRequest struct {
	Labels []WebhookLabel `json:"labels"`
	Head   WebhookHead    `json:"head"`
}

type WebhookLabel struct {
	Name string `json:"name"`
}

type WebhookHead struct {
	SHA  string       `json:"sha"`
	Repo *WebhookRepo `json:"repo"`
}

type WebhookRepo struct {
	HTMLURL string `json:"html_url"`
}

type EventKind int

const (
	EventUnknown EventKind = iota
	EventIssueClosed
	EventPullRequest
)

// Kind classifies a delivery. The issue branch is checked first: a
// payload carrying both an issue and a pull request only ever takes the
// issue-closed path.
func (e *WebhookEvent) Kind() EventKind {
	switch {
	case e.Action == "closed" && e.Issue != nil:
		return EventIssueClosed
	case e.PullRequest != nil:
		return EventPullRequest
	default:
		return EventUnknown
	}
}
