package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gosovereign-backend/internal/config"
	"gosovereign-backend/internal/database/models"
	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/logger"
	"gosovereign-backend/internal/repository"
)

// Audit trail step names. Bulk redeploys prefix every step with
// bulkLogPrefix so per-store retries are distinguishable from the
// admin-triggered sweep.
const (
	stepDeploymentStarted  = "deployment_started"
	stepVercelDeploy       = "vercel_deploy"
	stepPasswordResetEmail = "password_reset_email"
	stepDeploymentComplete = "deployment_completed"
	stepDeploymentFailed   = "deployment_failed"

	bulkLogPrefix = "admin_bulk_redeploy_"
)

// DeployResult is the response to a deployment trigger
type DeployResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	DeploymentID  string `json:"deploymentId,omitempty"`
	DeploymentURL string `json:"deploymentUrl,omitempty"`
	StoreURL      string `json:"storeUrl,omitempty"`
	ProjectURL    string `json:"projectUrl,omitempty"`
}

// StatusResult is one snapshot of a deployment's progress, in the provider's
// readyState vocabulary.
type StatusResult struct {
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BulkResult is the per-store outcome of a bulk redeploy
type BulkResult struct {
	StoreID       uuid.UUID `json:"storeId"`
	StoreName     string    `json:"storeName"`
	Success       bool      `json:"success"`
	DeploymentURL string    `json:"deploymentUrl,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// BulkRedeploySummary aggregates a full bulk redeploy sweep
type BulkRedeploySummary struct {
	Success   bool         `json:"success"`
	Total     int          `json:"total"`
	Completed int          `json:"completed"`
	Failed    int          `json:"failed"`
	Results   []BulkResult `json:"results"`
}

// DeployService orchestrates the deployment pipeline: store record in,
// live website out. It owns the store status state machine and the
// append-only audit trail; the provider-facing steps are delegated to the
// resolver, env builder, domain and hosting services.
type DeployService struct {
	cfg        *config.Config
	storeRepo  repository.StoreRepositoryInterface
	logRepo    repository.DeploymentLogRepositoryInterface
	userRepo   repository.UserRepositoryInterface
	hosting    HostingClient
	resolver   *ProjectResolver
	envBuilder *EnvBuilder
	domains    *DomainService
	repos      RepoResolver
	poller     *StatusPoller
	notifier   Notifier
	pacer      DeployPacer
}

// NewDeployService creates a new deployment orchestrator
func NewDeployService(
	cfg *config.Config,
	storeRepo repository.StoreRepositoryInterface,
	logRepo repository.DeploymentLogRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	hosting HostingClient,
	repos RepoResolver,
	notifier Notifier,
	pacer DeployPacer,
) *DeployService {
	return &DeployService{
		cfg:        cfg,
		storeRepo:  storeRepo,
		logRepo:    logRepo,
		userRepo:   userRepo,
		hosting:    hosting,
		resolver:   NewProjectResolver(cfg, hosting),
		envBuilder: NewEnvBuilder(cfg),
		domains:    NewDomainService(cfg, hosting, storeRepo),
		repos:      repos,
		poller:     NewStatusPoller(hosting),
		notifier:   notifier,
		pacer:      pacer,
	}
}

// Deploy triggers a deployment of the caller's store. When storeID is nil,
// the caller's most recently created store is deployed. An already-deployed
// store short-circuits and returns its existing URL without touching the
// hosting provider.
func (s *DeployService) Deploy(ctx context.Context, userID uuid.UUID, storeID *uuid.UUID) (*DeployResult, error) {
	store, err := s.resolveTarget(userID, storeID)
	if err != nil {
		return nil, err
	}

	// The billing gate outranks the idempotence guard: a store whose
	// subscription lapsed after going live still gets the 403, not its URL.
	if err := s.checkBillingGate(store); err != nil {
		return nil, err
	}

	if store.IsDeployed() {
		return &DeployResult{
			Success:       true,
			Message:       "store is already deployed",
			StoreURL:      store.DeploymentURL,
			DeploymentURL: store.DeploymentURL,
		}, nil
	}

	return s.runPipeline(ctx, store, "")
}

// AdminRedeploy redeploys a single store on behalf of a platform admin. It
// bypasses both the billing gate and the already-deployed short-circuit,
// since its purpose is pushing updated environment variables to live stores.
func (s *DeployService) AdminRedeploy(ctx context.Context, storeID uuid.UUID) (*DeployResult, error) {
	store, err := s.getStore(storeID)
	if err != nil {
		return nil, err
	}
	return s.runPipeline(ctx, store, "")
}

// BulkRedeploy redeploys every currently-deployed store, sequentially and
// paced, on behalf of a platform admin. A failure on one store is recorded
// and the sweep continues; the summary reports per-store outcomes.
func (s *DeployService) BulkRedeploy(ctx context.Context) (*BulkRedeploySummary, error) {
	stores, err := s.storeRepo.GetDeployed()
	if err != nil {
		return nil, fmt.Errorf("failed to list deployed stores: %w", err)
	}

	log := logger.WithContext(ctx).WithField("store_count", len(stores))
	log.Info("Starting bulk redeploy")

	summary := &BulkRedeploySummary{
		Total:   len(stores),
		Results: make([]BulkResult, 0, len(stores)),
	}

	for i := range stores {
		store := &stores[i]

		if i > 0 {
			if err := s.pacer.Wait(ctx); err != nil {
				return summary, err
			}
		}

		result := BulkResult{StoreID: store.ID, StoreName: store.Name}
		if deployed, err := s.runPipeline(ctx, store, bulkLogPrefix); err != nil {
			result.Error = err.Error()
			summary.Failed++
			logger.WithContext(ctx).WithFields(map[string]interface{}{
				"store_id":  store.ID,
				"subdomain": store.Subdomain,
			}).Errorf("Bulk redeploy failed for store: %v", err)
		} else {
			result.Success = true
			result.DeploymentURL = deployed.StoreURL
			summary.Completed++
		}
		summary.Results = append(summary.Results, result)
	}

	summary.Success = summary.Failed == 0
	log.WithFields(map[string]interface{}{
		"completed": summary.Completed,
		"failed":    summary.Failed,
	}).Info("Bulk redeploy finished")

	return summary, nil
}

// DeploymentStatus reads a deployment's progress from the provider. With wait
// set, it blocks through the poller's bounded budget until the deployment is
// terminal or the budget runs out. When the deployment has reached a terminal
// state the owning store is promoted to deployed (or demoted to failed), so a
// later page load can read the persisted state without polling.
func (s *DeployService) DeploymentStatus(ctx context.Context, userID uuid.UUID, isAdmin bool, deploymentID string, wait bool) (*StatusResult, error) {
	store, err := s.storeRepo.GetByDeploymentID(deploymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDeploymentNotFound
		}
		return nil, err
	}
	if !isAdmin && store.UserID != userID {
		return nil, apperrors.ErrNotStoreOwner
	}

	var poll *PollResult
	if wait {
		poll, err = s.poller.WaitForTerminal(ctx, deploymentID)
	} else {
		poll, err = s.poller.Poll(ctx, deploymentID)
	}
	if err != nil {
		return nil, err
	}

	result := &StatusResult{Status: poll.ReadyState}
	switch poll.State {
	case DeployStateReady:
		result.URL = store.DeploymentURL
		if store.Status == models.StoreStatusDeploying {
			now := time.Now().UTC()
			if err := s.transition(ctx, store, models.StoreStatusDeployed, map[string]interface{}{"deployed_at": now}); err != nil {
				return nil, err
			}
			store.DeployedAt = &now
			s.logStep(ctx, store.ID, stepDeploymentComplete, models.LogStatusCompleted, "store is live", map[string]interface{}{
				"url": store.DeploymentURL,
			})
		}
	case DeployStateError:
		result.Error = "deployment failed"
		if poll.Message != "" {
			result.Error = poll.Message
		}
		// A polling-budget timeout also lands here but carries the last
		// non-terminal readyState; the build may still finish, so only a
		// provider-reported failure demotes the store.
		if mapReadyState(poll.ReadyState) == DeployStateError && store.Status == models.StoreStatusDeploying {
			if err := s.transition(ctx, store, models.StoreStatusFailed, nil); err != nil {
				return nil, err
			}
			s.logStep(ctx, store.ID, stepDeploymentFailed, models.LogStatusFailed, "hosting provider reported a build failure", nil)
		}
	}

	return result, nil
}

// runPipeline executes the deployment steps for one store: resolve project,
// apply env vars, attach the subdomain alias, trigger the build. The
// provider-facing unit is logged as one vercel_deploy step; its first
// failure marks the store failed and aborts with no further store mutation.
func (s *DeployService) runPipeline(ctx context.Context, store *models.Store, logPrefix string) (*DeployResult, error) {
	log := logger.WithContext(ctx).WithFields(map[string]interface{}{
		"store_id":  store.ID,
		"subdomain": store.Subdomain,
	})
	log.Info("Starting deployment")

	s.logStep(ctx, store.ID, logPrefix+stepDeploymentStarted, models.LogStatusStarted, "deployment started", nil)
	if err := s.transition(ctx, store, models.StoreStatusDeploying, nil); err != nil {
		return nil, err
	}
	s.logStep(ctx, store.ID, logPrefix+stepVercelDeploy, models.LogStatusStarted, "provisioning hosting project and triggering build", nil)

	// Env vars are computed first: a misconfigured platform fails fast,
	// before any provider call.
	envVars, err := s.envBuilder.Build(store)
	if err != nil {
		return nil, s.failDeploy(ctx, store, logPrefix, err)
	}

	project, err := s.resolver.Resolve(ctx, store)
	if err != nil {
		return nil, s.failDeploy(ctx, store, logPrefix, err)
	}

	if err := s.hosting.UpsertEnv(ctx, project.ID, envVars); err != nil {
		return nil, s.failDeploy(ctx, store, logPrefix, err)
	}

	alias, err := s.domains.EnsureSubdomainAlias(ctx, store, project.ID)
	if err != nil {
		return nil, s.failDeploy(ctx, store, logPrefix, err)
	}

	templateRepo := s.resolver.TemplateRepo(store.TemplateKind)
	repoID, err := s.repos.ResolveRepoID(ctx, templateRepo)
	if err != nil {
		return nil, s.failDeploy(ctx, store, logPrefix, err)
	}

	deployment, err := s.hosting.CreateDeployment(ctx, CreateDeploymentRequest{
		ProjectName: store.Subdomain,
		RepoID:      repoID,
		Ref:         "main",
		Target:      "production",
	})
	if err != nil {
		return nil, s.failDeploy(ctx, store, logPrefix, err)
	}

	storeURL := "https://" + alias
	deploymentURL := "https://" + deployment.URL
	if err := s.persist(store, map[string]interface{}{
		"vercel_project_id":    project.ID,
		"vercel_deployment_id": deployment.ID,
		"deployment_url":       storeURL,
	}); err != nil {
		return nil, s.failDeploy(ctx, store, logPrefix, err)
	}
	store.VercelProjectID = project.ID
	store.VercelDeploymentID = deployment.ID
	store.DeploymentURL = storeURL

	s.logStep(ctx, store.ID, logPrefix+stepVercelDeploy, models.LogStatusCompleted,
		fmt.Sprintf("deployment triggered with %d environment variables", len(envVars)),
		map[string]interface{}{
			"project_id":     project.ID,
			"deployment_id":  deployment.ID,
			"deployment_url": deploymentURL,
			"store_url":      storeURL,
		})

	// Owner notification is best effort. The deployment is already in
	// flight; a mail failure is recorded but never fails the pipeline.
	s.sendOwnerCredentials(ctx, store, storeURL, logPrefix)

	log.WithField("deployment_id", deployment.ID).Info("Deployment triggered")

	return &DeployResult{
		Success:       true,
		Message:       "deployment started",
		DeploymentID:  deployment.ID,
		DeploymentURL: deploymentURL,
		StoreURL:      storeURL,
		ProjectURL:    "https://vercel.com/" + project.Name,
	}, nil
}

// sendOwnerCredentials issues a fresh password reset token and emails the
// owner their store URL and derived admin credentials.
func (s *DeployService) sendOwnerCredentials(ctx context.Context, store *models.Store, storeURL, logPrefix string) {
	owner, err := s.userRepo.GetByID(store.UserID)
	if err != nil {
		s.logStep(ctx, store.ID, logPrefix+stepPasswordResetEmail, models.LogStatusFailed,
			"could not load store owner", nil)
		return
	}

	token, expiresAt, err := GenerateResetToken(store.ID, s.cfg.JWTSecret)
	if err != nil {
		s.logStep(ctx, store.ID, logPrefix+stepPasswordResetEmail, models.LogStatusFailed,
			"could not generate reset token", nil)
		return
	}
	if err := s.persist(store, map[string]interface{}{
		"reset_token":            token,
		"reset_token_expires_at": expiresAt,
	}); err != nil {
		s.logStep(ctx, store.ID, logPrefix+stepPasswordResetEmail, models.LogStatusFailed,
			"could not persist reset token", nil)
		return
	}
	store.ResetToken = token
	store.ResetTokenExpiresAt = &expiresAt

	email := StoreLiveEmail{
		To:            owner.Email,
		StoreName:     store.Name,
		StoreURL:      storeURL,
		AdminEmail:    owner.Email,
		AdminPassword: DerivedAdminPassword(store.ID),
		ResetURL:      fmt.Sprintf("%s/admin/reset-password?token=%s", storeURL, token),
	}
	if err := s.notifier.SendStoreLiveEmail(ctx, email); err != nil {
		logger.WithContext(ctx).WithField("store_id", store.ID).Warnf("Store live email failed: %v", err)
		s.logStep(ctx, store.ID, logPrefix+stepPasswordResetEmail, models.LogStatusFailed, err.Error(), nil)
		return
	}
	s.logStep(ctx, store.ID, logPrefix+stepPasswordResetEmail, models.LogStatusCompleted, "owner credentials sent", nil)
}

// resolveTarget loads the deploy target: the given store (ownership
// enforced) or the caller's most recent store when none was named.
func (s *DeployService) resolveTarget(userID uuid.UUID, storeID *uuid.UUID) (*models.Store, error) {
	if storeID != nil {
		store, err := s.getStore(*storeID)
		if err != nil {
			return nil, err
		}
		if store.UserID != userID {
			return nil, apperrors.ErrNotStoreOwner
		}
		return store, nil
	}

	store, err := s.storeRepo.GetLatestByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

func (s *DeployService) getStore(storeID uuid.UUID) (*models.Store, error) {
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// checkBillingGate refuses deployment for stores whose subscription does not
// entitle them to one. The reason strings are shown to the owner verbatim.
func (s *DeployService) checkBillingGate(store *models.Store) error {
	if store.CanDeploy {
		return nil
	}

	reason := "a completed payment is required before this store can be deployed"
	switch store.SubscriptionStatus {
	case models.SubscriptionStatusPastDue:
		reason = "your payment is past due, please update your payment method to deploy"
	case models.SubscriptionStatusCancelled:
		reason = "your subscription has been cancelled, please resubscribe to deploy"
	}
	return &apperrors.DeployNotAllowedError{
		Reason:             reason,
		SubscriptionStatus: string(store.SubscriptionStatus),
	}
}

// transition moves the store to the target status, enforcing the lifecycle
// state machine, and persists the change together with extra fields.
func (s *DeployService) transition(ctx context.Context, store *models.Store, target models.StoreStatus, extra map[string]interface{}) error {
	if !store.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidStatusTransition, store.Status, target)
	}

	updates := map[string]interface{}{"status": target}
	for k, v := range extra {
		updates[k] = v
	}
	if err := s.persist(store, updates); err != nil {
		return err
	}
	store.Status = target

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"store_id": store.ID,
		"status":   target,
	}).Info("Store status changed")
	return nil
}

func (s *DeployService) persist(store *models.Store, updates map[string]interface{}) error {
	if err := s.storeRepo.UpdateFields(store.ID, updates); err != nil {
		return fmt.Errorf("failed to update store: %w", err)
	}
	return nil
}

// failDeploy records the pipeline failure under the vercel_deploy step,
// marks the store failed and returns the original error.
func (s *DeployService) failDeploy(ctx context.Context, store *models.Store, logPrefix string, cause error) error {
	s.logStep(ctx, store.ID, logPrefix+stepVercelDeploy, models.LogStatusFailed, cause.Error(), nil)

	if store.Status.CanTransitionTo(models.StoreStatusFailed) {
		if err := s.persist(store, map[string]interface{}{"status": models.StoreStatusFailed}); err != nil {
			logger.WithContext(ctx).WithField("store_id", store.ID).Errorf("Failed to mark store failed: %v", err)
		} else {
			store.Status = models.StoreStatusFailed
		}
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"store_id":  store.ID,
		"subdomain": store.Subdomain,
	}).Errorf("Deployment failed: %v", cause)
	return cause
}

// logStep appends one audit trail entry. Audit writes are never allowed to
// fail a deployment; a write error is logged and swallowed.
func (s *DeployService) logStep(ctx context.Context, storeID uuid.UUID, step string, status models.DeploymentLogStatus, message string, metadata map[string]interface{}) {
	entry := &models.DeploymentLog{
		StoreID: storeID,
		Step:    step,
		Status:  status,
		Message: message,
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = raw
		}
	}

	if err := s.logRepo.Create(entry); err != nil {
		logger.WithContext(ctx).WithFields(map[string]interface{}{
			"store_id": storeID,
			"step":     step,
		}).Errorf("Failed to write deployment log: %v", err)
	}
}
