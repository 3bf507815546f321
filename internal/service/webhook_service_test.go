package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ataleek/portal/internal/github"
	"github.com/ataleek/portal/internal/model"
	"github.com/ataleek/portal/internal/repository"
)

const admin = "ahmedbilal"

func adminComment(body string, at time.Time) github.Comment {
	return github.Comment{User: admin, Body: body, UpdatedAt: at}
}

func closedIssueEvent(author, title string) *model.WebhookEvent {
	return &model.WebhookEvent{
		Action: "closed",
		Issue: &model.WebhookIssue{
			Title:       title,
			CommentsURL: "https://api.github.com/repos/ataleek/ataleek/issues/1/comments",
			User:        model.WebhookUser{Login: author},
		},
	}
}

func solutionPullRequestEvent(labels ...string) *model.WebhookEvent {
	wireLabels := make([]model.WebhookLabel, 0, len(labels))
	for _, l := range labels {
		wireLabels = append(wireLabels, model.WebhookLabel{Name: l})
	}
	return &model.WebhookEvent{
		Action: "labeled",
		PullRequest: &model.WebhookPullRequest{
			Labels: wireLabels,
			Head: model.WebhookHead{
				SHA:  "abcd123",
				Repo: &model.WebhookRepo{HTMLURL: "https://github.com/alice/proj"},
			},
		},
	}
}

func TestWebhookService_IssueClosed(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		event         *model.WebhookEvent
		comments      []github.Comment
		expectedForks int
		expectedError bool
	}{
		{
			name:          "accepted creates one fork",
			event:         closedIssueEvent(admin, "https://github.com/alice/proj"),
			comments:      []github.Comment{adminComment("ACCEPTED!", base)},
			expectedForks: 1,
		},
		{
			name:  "first decision wins",
			event: closedIssueEvent(admin, "https://github.com/alice/proj"),
			comments: []github.Comment{
				adminComment("REJECTED!", base),
				adminComment("ACCEPTED!", base.Add(time.Hour)),
			},
			expectedForks: 0,
		},
		{
			name:  "decisions applied in timestamp order, not delivery order",
			event: closedIssueEvent(admin, "https://github.com/alice/proj"),
			comments: []github.Comment{
				adminComment("ACCEPTED!", base.Add(time.Hour)),
				adminComment("REJECTED!", base),
			},
			expectedForks: 0,
		},
		{
			name:  "non-admin comments ignored",
			event: closedIssueEvent(admin, "https://github.com/alice/proj"),
			comments: []github.Comment{
				{User: "mallory", Body: "ACCEPTED!", UpdatedAt: base},
				adminComment("ACCEPTED!", base.Add(time.Hour)),
			},
			expectedForks: 1,
		},
		{
			name:          "no decisive comment",
			event:         closedIssueEvent(admin, "https://github.com/alice/proj"),
			comments:      []github.Comment{adminComment("looks good", base)},
			expectedForks: 0,
		},
		{
			name:          "malformed issue title",
			event:         closedIssueEvent(admin, "not a repository url"),
			expectedForks: 0,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := new(MockOrgAPI)
			solutions := new(MockSolutionRepository)
			deliveries := new(MockDeliveryRepository)

			deliveries.On("Record", mock.Anything, mock.Anything).Return(nil)
			if tt.comments != nil {
				gh.On("ListComments", mock.Anything, tt.event.Issue.CommentsURL).Return(tt.comments, nil)
			}
			if tt.expectedForks > 0 {
				gh.On("CreateFork", mock.Anything, "alice", "proj").Return(nil)
			}

			svc := NewWebhookService(admin).
				WithOrgAPI(gh).
				WithSolutionRepo(solutions).
				WithDeliveryRepo(deliveries)

			err := svc.HandleDelivery(context.Background(), "delivery-1", tt.event)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			gh.AssertNumberOfCalls(t, "CreateFork", tt.expectedForks)
		})
	}
}

func TestWebhookService_IssueClosed_NonAdminAuthor(t *testing.T) {
	gh := new(MockOrgAPI)
	solutions := new(MockSolutionRepository)
	deliveries := new(MockDeliveryRepository)

	deliveries.On("Record", mock.Anything, mock.Anything).Return(nil)

	svc := NewWebhookService(admin).
		WithOrgAPI(gh).
		WithSolutionRepo(solutions).
		WithDeliveryRepo(deliveries)

	err := svc.HandleDelivery(context.Background(), "delivery-1",
		closedIssueEvent("mallory", "https://github.com/alice/proj"))

	assert.NoError(t, err)
	gh.AssertNotCalled(t, "ListComments", mock.Anything, mock.Anything)
	gh.AssertNotCalled(t, "CreateFork", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookService_PullRequest(t *testing.T) {
	tests := []struct {
		name            string
		event           *model.WebhookEvent
		createErr       error
		expectedCreates int
		expectedError   bool
	}{
		{
			name:            "solution label records one solution",
			event:           solutionPullRequestEvent("solution"),
			expectedCreates: 1,
		},
		{
			name:            "solution label among others, only one record",
			event:           solutionPullRequestEvent("bug", "solution", "solution"),
			expectedCreates: 1,
		},
		{
			name:            "no solution label records nothing",
			event:           solutionPullRequestEvent("bug", "enhancement"),
			expectedCreates: 0,
		},
		{
			name:            "no labels at all",
			event:           solutionPullRequestEvent(),
			expectedCreates: 0,
		},
		{
			name:            "duplicate solution is suppressed",
			event:           solutionPullRequestEvent("solution"),
			createErr:       repository.ErrAlreadyExists,
			expectedCreates: 1,
		},
		{
			name:            "storage failure surfaces for logging",
			event:           solutionPullRequestEvent("solution"),
			createErr:       errors.New("db down"),
			expectedCreates: 1,
			expectedError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := new(MockOrgAPI)
			solutions := new(MockSolutionRepository)
			deliveries := new(MockDeliveryRepository)

			deliveries.On("Record", mock.Anything, mock.Anything).Return(nil)
			if tt.expectedCreates > 0 {
				solutions.On("Create", mock.Anything, &repository.Solution{
					URL:      "https://github.com/alice/proj/tree/abcd123",
					Username: "alice",
				}).Return(tt.createErr)
			}

			svc := NewWebhookService(admin).
				WithOrgAPI(gh).
				WithSolutionRepo(solutions).
				WithDeliveryRepo(deliveries)

			err := svc.HandleDelivery(context.Background(), "delivery-1", tt.event)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			solutions.AssertNumberOfCalls(t, "Create", tt.expectedCreates)
		})
	}
}

func TestWebhookService_RedeliveryIsNoOp(t *testing.T) {
	gh := new(MockOrgAPI)
	solutions := new(MockSolutionRepository)
	deliveries := new(MockDeliveryRepository)

	deliveries.On("Record", mock.Anything, "delivery-1").Return(repository.ErrAlreadyExists)

	svc := NewWebhookService(admin).
		WithOrgAPI(gh).
		WithSolutionRepo(solutions).
		WithDeliveryRepo(deliveries)

	err := svc.HandleDelivery(context.Background(), "delivery-1", solutionPullRequestEvent("solution"))

	assert.NoError(t, err)
	solutions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWebhookService_IssueTakesPrecedenceOverPullRequest(t *testing.T) {
	gh := new(MockOrgAPI)
	solutions := new(MockSolutionRepository)
	deliveries := new(MockDeliveryRepository)

	deliveries.On("Record", mock.Anything, mock.Anything).Return(nil)
	gh.On("ListComments", mock.Anything, mock.Anything).Return([]github.Comment{}, nil)

	event := closedIssueEvent(admin, "https://github.com/alice/proj")
	event.PullRequest = solutionPullRequestEvent("solution").PullRequest

	svc := NewWebhookService(admin).
		WithOrgAPI(gh).
		WithSolutionRepo(solutions).
		WithDeliveryRepo(deliveries)

	err := svc.HandleDelivery(context.Background(), "delivery-1", event)

	assert.NoError(t, err)
	solutions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWebhookService_UnknownPayloadIsNoOp(t *testing.T) {
	gh := new(MockOrgAPI)
	solutions := new(MockSolutionRepository)
	deliveries := new(MockDeliveryRepository)

	deliveries.On("Record", mock.Anything, mock.Anything).Return(nil)

	svc := NewWebhookService(admin).
		WithOrgAPI(gh).
		WithSolutionRepo(solutions).
		WithDeliveryRepo(deliveries)

	err := svc.HandleDelivery(context.Background(), "delivery-1", &model.WebhookEvent{})

	assert.NoError(t, err)
	gh.AssertNotCalled(t, "CreateFork", mock.Anything, mock.Anything, mock.Anything)
	solutions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
