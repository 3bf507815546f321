package auth

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// OAuthProvider drives the GitHub authorization-code flow. The portal
// only keeps the resulting access token; profile data is fetched later
// with the token itself.
type OAuthProvider struct {
	config *oauth2.Config
}

func NewOAuthProvider(clientID, clientSecret, callbackURL string) *OAuthProvider {
	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"public_repo"},
			Endpoint:     githuboauth.Endpoint,
		},
	}
}

// AuthURL returns the authorization URL for a login attempt. The state
// must be checked against the callback to stop CSRF'd logins.
func (p *OAuthProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback's authorization code for an access
// token.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, "exchange oauth code")
	}
	return token.AccessToken, nil
}
