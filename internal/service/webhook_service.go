package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ataleek/portal/internal/github"
	"github.com/ataleek/portal/internal/model"
	"github.com/ataleek/portal/internal/repository"
	"github.com/ataleek/portal/pkg/logger"
)

const (
	commentAccepted = "ACCEPTED!"
	commentRejected = "REJECTED!"
	solutionLabel   = "solution"
)

// OrgAPI is the slice of the GitHub client the organization-level flows
// use. Backed by the admin token.
type OrgAPI interface {
	CreateFork(ctx context.Context, owner, repo string) error
	CreateIssue(ctx context.Context, owner, repo string, issue github.NewIssue) error
	ListOrgRepos(ctx context.Context, org string) ([]github.Repo, error)
	GetUser(ctx context.Context, username string) (*github.Account, error)
	IsOrgMember(ctx context.Context, org, username string) (bool, error)
	ListComments(ctx context.Context, commentsURL string) ([]github.Comment, error)
}

// WebhookService reacts to inbound GitHub deliveries: forking accepted
// project repositories and recording labeled solutions. Every delivery
// is classified from its payload alone; there is no workflow state
// between deliveries.
type WebhookService struct {
	admin string

	gh         OrgAPI
	solutions  repository.SolutionRepository
	deliveries repository.DeliveryRepository
}

func NewWebhookService(admin string) *WebhookService {
	return &WebhookService{admin: admin}
}

func (s *WebhookService) WithOrgAPI(gh OrgAPI) *WebhookService {
	s.gh = gh
	return s
}

func (s *WebhookService) WithSolutionRepo(solutions repository.SolutionRepository) *WebhookService {
	s.solutions = solutions
	return s
}

func (s *WebhookService) WithDeliveryRepo(deliveries repository.DeliveryRepository) *WebhookService {
	s.deliveries = deliveries
	return s
}

// HandleDelivery classifies one webhook delivery and runs its reaction.
// The returned error is for logging only; the HTTP endpoint
// acknowledges the sender regardless.
func (s *WebhookService) HandleDelivery(ctx context.Context, deliveryID string, event *model.WebhookEvent) error {
	l := logger.FromContext(ctx)

	err := s.deliveries.Record(ctx, deliveryID)
	if errors.Is(err, repository.ErrAlreadyExists) {
		l.Info("webhook delivery already processed", zap.String("delivery_id", deliveryID))
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "record webhook delivery")
	}

	switch event.Kind() {
	case model.EventIssueClosed:
		return s.reactToClosedIssue(ctx, event.Issue)
	case model.EventPullRequest:
		return s.reactToPullRequest(ctx, event.PullRequest)
	default:
		l.Debug("ignoring webhook delivery", zap.String("delivery_id", deliveryID), zap.String("action", event.Action))
		return nil
	}
}

// reactToClosedIssue runs the project-acceptance workflow. The issue
// title is the candidate repository URL and the issue must have been
// opened by the admin; the first decisive admin comment wins.
func (s *WebhookService) reactToClosedIssue(ctx context.Context, issue *model.WebhookIssue) error {
	l := logger.FromContext(ctx)

	owner, repo, err := github.ParseRepoURL(issue.Title)
	if err != nil {
		return errors.Wrap(err, "issue title is not a repository url")
	}

	if issue.User.Login != s.admin {
		l.Info("issue not opened by admin, skipping",
			zap.String("author", issue.User.Login),
			zap.String("title", issue.Title))
		return nil
	}

	comments, err := s.gh.ListComments(ctx, issue.CommentsURL)
	if err != nil {
		return errors.Wrap(err, "list issue comments")
	}

	decisions := github.FilterComments(comments, []string{s.admin}, []string{commentAccepted, commentRejected})
	github.SortComments(decisions)

	for _, c := range decisions {
		switch c.Body {
		case commentAccepted:
			if err := s.gh.CreateFork(ctx, owner, repo); err != nil {
				return errors.Wrapf(err, "fork %s/%s", owner, repo)
			}
			l.Info("project accepted, fork created",
				zap.String("owner", owner),
				zap.String("repo", repo))
			return nil
		case commentRejected:
			l.Info("project rejected",
				zap.String("owner", owner),
				zap.String("repo", repo))
			return nil
		}
	}

	l.Info("issue closed without a decision", zap.String("title", issue.Title))
	return nil
}

// reactToPullRequest records a solution for a pull request carrying the
// "solution" label. A redelivered or duplicate solution is treated as
// already recorded, not as a failure.
func (s *WebhookService) reactToPullRequest(ctx context.Context, pr *model.WebhookPullRequest) error {
	l := logger.FromContext(ctx)

	for _, label := range pr.Labels {
		if label.Name != solutionLabel {
			continue
		}

		if pr.Head.Repo == nil {
			return errors.New("pull request head has no repository")
		}

		username, _, err := github.ParseRepoURL(pr.Head.Repo.HTMLURL)
		if err != nil {
			return errors.Wrap(err, "parse head repository url")
		}

		url := fmt.Sprintf("%s/tree/%s", pr.Head.Repo.HTMLURL, pr.Head.SHA)

		err = s.solutions.Create(ctx, &repository.Solution{URL: url, Username: username})
		if errors.Is(err, repository.ErrAlreadyExists) {
			l.Info("solution already recorded", zap.String("url", url))
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "create solution")
		}

		l.Info("solution recorded",
			zap.String("url", url),
			zap.String("username", username))
		return nil
	}

	return nil
}
