package service

import (
	"context"
	"fmt"
	"strings"

	"gosovereign-backend/internal/config"
	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/logger"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubService resolves template repositories on GitHub. The hosting
// provider requires the numeric repository id, not the owner/name slug, when
// triggering a deployment from a bound repository.
type GitHubService struct {
	token  string
	client *github.Client
}

// NewGitHubService creates a new GitHub service using the platform token
func NewGitHubService(cfg *config.Config) *GitHubService {
	return &GitHubService{token: cfg.GitHubToken}
}

// NewGitHubServiceWithClient creates a GitHub service with a preconfigured
// client. This constructor is primarily for testing.
func NewGitHubServiceWithClient(client *github.Client) *GitHubService {
	return &GitHubService{client: client}
}

func (s *GitHubService) getClient(ctx context.Context) (*github.Client, error) {
	if s.client != nil {
		return s.client, nil
	}
	if s.token == "" {
		return nil, apperrors.ErrGitHubTokenNotSet
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: s.token},
	)
	tc := oauth2.NewClient(ctx, ts)
	s.client = github.NewClient(tc)
	return s.client, nil
}

// ResolveRepoID resolves a repository's numeric id from its owner/name slug.
// Failure here is fatal to the deployment trigger stage: a deploy must never
// be attempted with a missing repository reference.
func (s *GitHubService) ResolveRepoID(ctx context.Context, fullName string) (int64, error) {
	log := logger.WithContext(ctx).WithField("repo", fullName)

	owner, name, found := strings.Cut(fullName, "/")
	if !found || owner == "" || name == "" {
		return 0, fmt.Errorf("invalid template repository name %q, expected owner/name", fullName)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return 0, err
	}

	repo, _, err := client.Repositories.Get(ctx, owner, name)
	if err != nil {
		log.Errorf("Failed to resolve template repository: %v", err)
		return 0, fmt.Errorf("failed to resolve template repository %s: %w", fullName, err)
	}

	log.Debugf("Resolved template repository to id %d", repo.GetID())
	return repo.GetID(), nil
}
