package model

// User is a logged-in contributor. The only thing the portal stores
// about a user is the OAuth access token issued at login; the row is
// deleted again on logout.
type User struct {
	ID          int64  `json:"id"`
	AccessToken string `json:"-"`
}
