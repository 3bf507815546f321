package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ataleek/portal/internal/github"
	"github.com/ataleek/portal/internal/model"
	"github.com/ataleek/portal/internal/repository"
	"github.com/ataleek/portal/pkg/logger"
)

// UserAPI is the slice of the GitHub client that acts on behalf of a
// logged-in user, backed by their OAuth token.
type UserAPI interface {
	AuthenticatedUser(ctx context.Context) (*github.Account, error)
	GetRepo(ctx context.Context, owner, repo string) (*github.Repo, error)
	GetTree(ctx context.Context, owner, repo, ref string) ([]github.TreeNode, error)
	CreatePull(ctx context.Context, baseFullName string, pull github.NewPull) (*github.Pull, error)
}

// UserAPIFactory builds a UserAPI for one request from the session's
// access token.
type UserAPIFactory func(ctx context.Context, accessToken string) UserAPI

// PortalService implements the contributor-facing flows: project
// listing and submission, mentorship applications, solution submission,
// search and profiles.
type PortalService struct {
	org string

	gh        OrgAPI
	userAPI   UserAPIFactory
	mentors   repository.MentorRepository
	solutions repository.SolutionRepository
}

func NewPortalService(org string) *PortalService {
	return &PortalService{org: org}
}

func (s *PortalService) WithOrgAPI(gh OrgAPI) *PortalService {
	s.gh = gh
	return s
}

func (s *PortalService) WithUserAPIFactory(factory UserAPIFactory) *PortalService {
	s.userAPI = factory
	return s
}

func (s *PortalService) WithMentorRepo(mentors repository.MentorRepository) *PortalService {
	s.mentors = mentors
	return s
}

func (s *PortalService) WithSolutionRepo(solutions repository.SolutionRepository) *PortalService {
	s.solutions = solutions
	return s
}

// ListProjects returns the organization's public repositories, minus
// the portal's own repository (named after the organization).
func (s *PortalService) ListProjects(ctx context.Context) ([]*model.Project, *Error) {
	l := logger.FromContext(ctx)

	repos, err := s.gh.ListOrgRepos(ctx, s.org)
	if err != nil {
		l.Error("failed to list organization repositories", zap.Error(err))
		return nil, NewError(ErrorCodeUpstream, "failed to list projects")
	}

	projects := make([]*model.Project, 0, len(repos))
	for _, repo := range repos {
		if repo.Private || repo.Name == s.org {
			continue
		}
		projects = append(projects, &model.Project{
			Name:        repo.Name,
			FullName:    repo.FullName,
			HTMLURL:     repo.HTMLURL,
			Description: repo.Description,
			Fork:        repo.Fork,
			Private:     repo.Private,
			Language:    repo.Language,
			Topics:      strings.Join(repo.Topics, ", "),
		})
	}

	return projects, nil
}

// checkProjectLayout verifies the repository follows the project
// skeleton: a README.md, a code directory and a tests directory at the
// root.
func checkProjectLayout(files []github.TreeNode) []string {
	var missing []string

	has := func(path, kind string) bool {
		for _, f := range files {
			if f.Path == path && f.Type == kind {
				return true
			}
		}
		return false
	}

	if !has("README.md", "blob") {
		missing = append(missing, "README.md not found")
	}
	if !has("code", "tree") {
		missing = append(missing, `"code" directory not found`)
	}
	if !has("tests", "tree") {
		missing = append(missing, `"tests" directory not found`)
	}

	return missing
}

// AddProject proposes a contributor repository as a new project: the
// repository layout is validated and a review issue is opened on the
// organization repo, titled with the repository URL.
func (s *PortalService) AddProject(ctx context.Context, user *model.User, repoURL string) *Error {
	l := logger.FromContext(ctx)

	owner, repo, err := github.ParseRepoURL(repoURL)
	if err != nil {
		return NewError(ErrorCodeInvalidBody, "repository url must look like https://github.com/owner/repo")
	}

	gh := s.userAPI(ctx, user.AccessToken)

	files, err := gh.GetTree(ctx, owner, repo, "master")
	if err != nil {
		l.Error("failed to list repository tree", zap.String("repo", repoURL), zap.Error(err))
		return NewError(ErrorCodeUpstream, "failed to inspect repository")
	}

	if missing := checkProjectLayout(files); len(missing) > 0 {
		return NewError(ErrorCodeProjectIncomplete, strings.Join(missing, "; "))
	}

	issue := github.NewIssue{
		Title: repoURL,
		Body: fmt.Sprintf("Please verify all aspects of [%s](%s) according to the"+
			" Project Specification Guideline. Leave your comments and critics"+
			" about the project. Feel free to contribute to the project repo"+
			" to make it better.", repoURL, repoURL),
		Labels: []string{"New Project"},
	}
	if err := s.gh.CreateIssue(ctx, s.org, s.org, issue); err != nil {
		l.Error("failed to open review issue", zap.String("repo", repoURL), zap.Error(err))
		return NewError(ErrorCodeUpstream, "failed to open review issue")
	}

	l.Info("project submitted for review", zap.String("repo", repoURL))
	return nil
}

// ApplyForMentorship records a pending application for the logged-in
// user. A repeated application reports the current status instead of
// creating a second row.
func (s *PortalService) ApplyForMentorship(ctx context.Context, user *model.User) (*model.MentorApplication, *Error) {
	l := logger.FromContext(ctx)

	account, err := s.userAPI(ctx, user.AccessToken).AuthenticatedUser(ctx)
	if err != nil {
		l.Error("failed to fetch authenticated user", zap.Error(err))
		return nil, NewError(ErrorCodeUpstream, "failed to fetch your GitHub profile")
	}

	existing, err := s.mentors.Get(ctx, account.Login)
	if err == nil {
		return toMentorApplication(existing), NewError(ErrorCodeAlreadyApplied, alreadyAppliedMessage(existing))
	}
	if !errors.Is(err, repository.ErrNotFound) {
		l.Error("failed to look up mentor application", zap.String("username", account.Login), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to look up your application")
	}

	application := &repository.MentorApplication{
		Username:    account.Login,
		Status:      string(model.MentorStatusPending),
		ProfileLink: account.HTMLURL,
	}
	err = s.mentors.Create(ctx, application)
	if errors.Is(err, repository.ErrAlreadyExists) {
		// Lost a race against a concurrent application; report it the
		// same way as a repeat.
		existing, getErr := s.mentors.Get(ctx, account.Login)
		if getErr != nil {
			return nil, NewError(ErrorCodeUnspecified, "failed to look up your application")
		}
		return toMentorApplication(existing), NewError(ErrorCodeAlreadyApplied, alreadyAppliedMessage(existing))
	}
	if err != nil {
		l.Error("failed to create mentor application", zap.String("username", account.Login), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to submit your application")
	}

	l.Info("mentor application submitted", zap.String("username", account.Login))
	return toMentorApplication(application), nil
}

func alreadyAppliedMessage(m *repository.MentorApplication) string {
	msg := fmt.Sprintf("you have already applied for mentorship, your status is %s", m.Status)
	if m.Status == string(model.MentorStatusRejected) && m.StatusReason != "" {
		msg += fmt.Sprintf(" and the reason is %s", m.StatusReason)
	}
	return msg
}

func toMentorApplication(m *repository.MentorApplication) *model.MentorApplication {
	return &model.MentorApplication{
		Username:     m.Username,
		Status:       model.MentorStatus(m.Status),
		ProfileLink:  m.ProfileLink,
		StatusReason: m.StatusReason,
	}
}

// SubmitSolution opens a "Solution" pull request from the user's fork
// against its parent project and returns the review URL.
func (s *PortalService) SubmitSolution(ctx context.Context, user *model.User, repoURL string) (string, *Error) {
	l := logger.FromContext(ctx)

	owner, repo, err := github.ParseRepoURL(repoURL)
	if err != nil {
		return "", NewError(ErrorCodeInvalidBody, "repository url must look like https://github.com/owner/repo")
	}

	gh := s.userAPI(ctx, user.AccessToken)

	files, err := gh.GetTree(ctx, owner, repo, "master")
	if err != nil {
		l.Error("failed to list repository tree", zap.String("repo", repoURL), zap.Error(err))
		return "", NewError(ErrorCodeUpstream, "failed to inspect repository")
	}
	if missing := checkProjectLayout(files); len(missing) > 0 {
		return "", NewError(ErrorCodeProjectIncomplete, strings.Join(missing, "; "))
	}

	fork, err := gh.GetRepo(ctx, owner, repo)
	if err != nil {
		l.Error("failed to fetch repository", zap.String("repo", repoURL), zap.Error(err))
		return "", NewError(ErrorCodeUpstream, "failed to inspect repository")
	}
	if fork.Parent == nil {
		return "", NewError(ErrorCodeInvalidBody, "repository is not a fork of a project")
	}

	pull, err := gh.CreatePull(ctx, fork.Parent.FullName, github.NewPull{
		Title: "Solution",
		Head:  fmt.Sprintf("%s:master", owner),
		Base:  "master",
	})
	if err != nil {
		l.Error("failed to open solution pull request",
			zap.String("repo", repoURL),
			zap.String("parent", fork.Parent.FullName),
			zap.Error(err))
		return "", NewError(ErrorCodeUpstream,
			"make sure that you have incorporated some changes in your solution repository")
	}

	l.Info("solution submitted for review",
		zap.String("repo", repoURL),
		zap.String("pull_url", pull.HTMLURL))
	return pull.HTMLURL, nil
}

// Search matches solutions by submitter and verified mentors by
// username, both as substring matches.
func (s *PortalService) Search(ctx context.Context, query string) (*model.SearchResult, *Error) {
	l := logger.FromContext(ctx)

	solutions, err := s.solutions.Search(ctx, query)
	if err != nil {
		l.Error("solution search failed", zap.String("query", query), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "search failed")
	}

	mentors, err := s.mentors.Search(ctx, query, string(model.MentorStatusVerified))
	if err != nil {
		l.Error("mentor search failed", zap.String("query", query), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "search failed")
	}

	result := &model.SearchResult{
		Solutions: make([]*model.Solution, 0, len(solutions)),
		Mentors:   make([]*model.MentorApplication, 0, len(mentors)),
	}
	for _, solution := range solutions {
		result.Solutions = append(result.Solutions, &model.Solution{URL: solution.URL, Username: solution.Username})
	}
	for _, mentor := range mentors {
		result.Mentors = append(result.Mentors, toMentorApplication(mentor))
	}

	return result, nil
}

// UserProfile assembles the public profile of a username: the GitHub
// account, mentor/student status from organization membership, and the
// user's recorded solutions.
func (s *PortalService) UserProfile(ctx context.Context, username string) (*model.UserProfile, *Error) {
	l := logger.FromContext(ctx)

	account, err := s.gh.GetUser(ctx, username)
	if errors.Is(err, github.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "no such user")
	}
	if err != nil {
		l.Error("failed to fetch user", zap.String("username", username), zap.Error(err))
		return nil, NewError(ErrorCodeUpstream, "failed to fetch user profile")
	}

	status := "Student"
	member, err := s.gh.IsOrgMember(ctx, s.org, username)
	if err != nil {
		// Membership is cosmetic on the profile; log and fall back to
		// the default status rather than failing the page.
		l.Warn("membership check failed", zap.String("username", username), zap.Error(err))
	} else if member {
		status = "Mentor"
	}

	solutions, err := s.solutions.ListByUsername(ctx, username)
	if err != nil {
		l.Error("failed to list solutions", zap.String("username", username), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list solutions")
	}

	profile := &model.UserProfile{
		Username:  account.Login,
		Name:      account.Name,
		HTMLURL:   account.HTMLURL,
		AvatarURL: account.AvatarURL,
		Bio:       account.Bio,
		Status:    status,
		Solutions: make([]*model.Solution, 0, len(solutions)),
	}
	for _, solution := range solutions {
		profile.Solutions = append(profile.Solutions, &model.Solution{URL: solution.URL, Username: solution.Username})
	}

	return profile, nil
}
