package github

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ParseRepoURL reads the owner and repository name from a repository
// URL, taken as the first two path segments. No normalization of
// trailing slashes, case, or ".git" suffixes is done; callers must pass
// well-formed URLs like "https://github.com/owner/repo".
func ParseRepoURL(raw string) (owner, repo string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", errors.Wrapf(err, "parse repository url %q", raw)
	}

	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", "", errors.Errorf("repository url %q has no owner/repo path", raw)
	}

	return segments[0], segments[1], nil
}
