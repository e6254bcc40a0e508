package service

import (
	"context"

	"github.com/google/uuid"

	"gosovereign-backend/internal/database/models"
)

// HostingClient is the surface of the hosting provider API the deployment
// pipeline depends on. VercelClient is the production implementation.
type HostingClient interface {
	GetProjectByName(ctx context.Context, name string) (*VercelProject, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (*VercelProject, error)
	UpsertEnv(ctx context.Context, projectID string, vars []EnvVar) error
	CreateDeployment(ctx context.Context, req CreateDeploymentRequest) (*VercelDeployment, error)
	GetDeployment(ctx context.Context, deploymentID string) (*VercelDeployment, error)
	AddProjectDomain(ctx context.Context, projectID, domain string) (*VercelDomain, error)
	GetProjectDomain(ctx context.Context, projectID, domain string) (*VercelDomain, error)
	RemoveProjectDomain(ctx context.Context, projectID, domain string) error
}

// RepoResolver resolves a template repository's numeric id from its
// human-readable owner/name. GitHubService is the production implementation.
type RepoResolver interface {
	ResolveRepoID(ctx context.Context, fullName string) (int64, error)
}

// Notifier sends the post-deploy owner notification. EmailService is the
// production implementation.
type Notifier interface {
	SendStoreLiveEmail(ctx context.Context, req StoreLiveEmail) error
}

// DeployPacer paces calls to the hosting provider during bulk redeploys.
type DeployPacer interface {
	Wait(ctx context.Context) error
}

// DeployServiceInterface defines the deployment operations handlers depend on
type DeployServiceInterface interface {
	Deploy(ctx context.Context, userID uuid.UUID, storeID *uuid.UUID) (*DeployResult, error)
	AdminRedeploy(ctx context.Context, storeID uuid.UUID) (*DeployResult, error)
	BulkRedeploy(ctx context.Context) (*BulkRedeploySummary, error)
	DeploymentStatus(ctx context.Context, userID uuid.UUID, isAdmin bool, deploymentID string, wait bool) (*StatusResult, error)
}

// StoreServiceInterface defines the store operations handlers depend on
type StoreServiceInterface interface {
	Create(ctx context.Context, store *models.Store) error
	Get(storeID uuid.UUID) (*models.Store, error)
	GetForUser(storeID, userID uuid.UUID, isAdmin bool) (*models.Store, error)
	GetBySubdomain(subdomain string) (*models.Store, error)
	List(userID uuid.UUID, limit, offset int) ([]models.Store, int64, error)
	Update(ctx context.Context, store *models.Store, input UpdateStoreInput) (*models.Store, error)
	DeploymentLogs(storeID uuid.UUID, limit, offset int) ([]models.DeploymentLog, int64, error)
}

// DomainServiceInterface defines the domain operations handlers depend on
type DomainServiceInterface interface {
	AuthorizeStoreAdmin(store *models.Store, bearerToken string) error
	ListDomains(ctx context.Context, store *models.Store) ([]VercelDomain, error)
	VerifyDomain(ctx context.Context, store *models.Store, domain string) (*VercelDomain, error)
	AddCustomDomain(ctx context.Context, store *models.Store, domain string) (*VercelDomain, error)
	RemoveCustomDomain(ctx context.Context, store *models.Store, domain string) error
}
