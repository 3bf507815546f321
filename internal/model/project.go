package model

// Project is a repository under the organization's account, shown on
// the project listing. Materialized from the GitHub repository listing
// per request, never persisted.
type Project struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Fork        bool   `json:"fork"`
	Private     bool   `json:"private"`
	Language    string `json:"language"`
	Topics      string `json:"topics"`
}

// SearchResult groups the search endpoint's two record kinds.
type SearchResult struct {
	Solutions []*Solution          `json:"solutions"`
	Mentors   []*MentorApplication `json:"mentors"`
}

// UserProfile is the public profile page payload: GitHub account info
// plus the user's recorded solutions.
type UserProfile struct {
	Username  string      `json:"username"`
	Name      string      `json:"name,omitempty"`
	HTMLURL   string      `json:"html_url"`
	AvatarURL string      `json:"avatar_url,omitempty"`
	Bio       string      `json:"bio,omitempty"`
	Status    string      `json:"status"`
	Solutions []*Solution `json:"solutions"`
}
