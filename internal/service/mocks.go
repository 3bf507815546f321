package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ataleek/portal/internal/github"
	"github.com/ataleek/portal/internal/repository"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type MockOrgAPI struct {
	mock.Mock
}

func (m *MockOrgAPI) CreateFork(ctx context.Context, owner, repo string) error {
	args := m.Called(ctx, owner, repo)
	return args.Error(0)
}

func (m *MockOrgAPI) CreateIssue(ctx context.Context, owner, repo string, issue github.NewIssue) error {
	args := m.Called(ctx, owner, repo, issue)
	return args.Error(0)
}

func (m *MockOrgAPI) ListOrgRepos(ctx context.Context, org string) ([]github.Repo, error) {
	args := m.Called(ctx, org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]github.Repo), args.Error(1)
}

func (m *MockOrgAPI) GetUser(ctx context.Context, username string) (*github.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Account), args.Error(1)
}

func (m *MockOrgAPI) IsOrgMember(ctx context.Context, org, username string) (bool, error) {
	args := m.Called(ctx, org, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrgAPI) ListComments(ctx context.Context, commentsURL string) ([]github.Comment, error) {
	args := m.Called(ctx, commentsURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]github.Comment), args.Error(1)
}

type MockUserAPI struct {
	mock.Mock
}

func (m *MockUserAPI) AuthenticatedUser(ctx context.Context) (*github.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Account), args.Error(1)
}

func (m *MockUserAPI) GetRepo(ctx context.Context, owner, repo string) (*github.Repo, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Repo), args.Error(1)
}

func (m *MockUserAPI) GetTree(ctx context.Context, owner, repo, ref string) ([]github.TreeNode, error) {
	args := m.Called(ctx, owner, repo, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]github.TreeNode), args.Error(1)
}

func (m *MockUserAPI) CreatePull(ctx context.Context, baseFullName string, pull github.NewPull) (*github.Pull, error) {
	args := m.Called(ctx, baseFullName, pull)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Pull), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, accessToken string) (*repository.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserRepository) Get(ctx context.Context, id int64) (*repository.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserRepository) GetByToken(ctx context.Context, accessToken string) (*repository.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMentorRepository struct {
	mock.Mock
}

func (m *MockMentorRepository) Create(ctx context.Context, application *repository.MentorApplication) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

func (m *MockMentorRepository) Get(ctx context.Context, username string) (*repository.MentorApplication, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.MentorApplication), args.Error(1)
}

func (m *MockMentorRepository) Search(ctx context.Context, usernameQuery, status string) ([]*repository.MentorApplication, error) {
	args := m.Called(ctx, usernameQuery, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.MentorApplication), args.Error(1)
}

type MockSolutionRepository struct {
	mock.Mock
}

func (m *MockSolutionRepository) Create(ctx context.Context, solution *repository.Solution) error {
	args := m.Called(ctx, solution)
	return args.Error(0)
}

func (m *MockSolutionRepository) ListByUsername(ctx context.Context, username string) ([]*repository.Solution, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Solution), args.Error(1)
}

func (m *MockSolutionRepository) Search(ctx context.Context, usernameQuery string) ([]*repository.Solution, error) {
	args := m.Called(ctx, usernameQuery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Solution), args.Error(1)
}

type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Record(ctx context.Context, deliveryID string) error {
	args := m.Called(ctx, deliveryID)
	return args.Error(0)
}

type MockOAuthExchanger struct {
	mock.Mock
}

func (m *MockOAuthExchanger) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockOAuthExchanger) Exchange(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}
