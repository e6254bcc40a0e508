package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosovereign-backend/internal/config"
	"gosovereign-backend/internal/database/models"
	apperrors "gosovereign-backend/internal/errors"
)

// deployFixture wires a DeployService onto in-memory repositories and a
// hosting fake whose happy path succeeds end to end.
type deployFixture struct {
	cfg       *config.Config
	storeRepo *mockStoreRepo
	logRepo   *mockLogRepo
	userRepo  *mockUserRepo
	hosting   *mockHostingClient
	notifier  *mockNotifier
	pacer     *mockPacer
	service   *DeployService

	upsertedEnv []EnvVar
}

func newDeployFixture(t *testing.T, stores ...*models.Store) *deployFixture {
	t.Helper()

	f := &deployFixture{
		cfg: &config.Config{
			JWTSecret:           "test-secret",
			PlatformDomain:      "gosovereign.app",
			PlatformAPIURL:      "https://api.gosovereign.app",
			SupabaseURL:         "https://abc.supabase.co",
			SupabaseAnonKey:     "anon-key",
			FromEmail:           "hello@gosovereign.app",
			TemplateRepoGoods:   "gosovereign/storefront-goods-template",
			TemplateRepoDefault: "gosovereign/storefront-goods-template",
		},
		storeRepo: newMockStoreRepo(stores...),
		logRepo:   &mockLogRepo{},
		userRepo:  newMockUserRepo(),
		notifier:  &mockNotifier{},
		pacer:     &mockPacer{},
	}

	f.hosting = &mockHostingClient{
		GetProjectByNameFunc: func(ctx context.Context, name string) (*VercelProject, error) {
			return nil, apperrors.ErrProjectNotFound
		},
		CreateProjectFunc: func(ctx context.Context, req CreateProjectRequest) (*VercelProject, error) {
			return &VercelProject{ID: "prj_" + req.Name, Name: req.Name}, nil
		},
		UpsertEnvFunc: func(ctx context.Context, projectID string, vars []EnvVar) error {
			f.upsertedEnv = vars
			return nil
		},
		AddProjectDomainFunc: func(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
			return &VercelDomain{Name: domain}, nil
		},
		CreateDeploymentFunc: func(ctx context.Context, req CreateDeploymentRequest) (*VercelDeployment, error) {
			return &VercelDeployment{ID: "dpl_1", URL: req.ProjectName + "-xyz.vercel.app", ReadyState: "QUEUED"}, nil
		},
	}

	f.service = NewDeployService(f.cfg, f.storeRepo, f.logRepo, f.userRepo, f.hosting, &mockRepoResolver{}, f.notifier, f.pacer)
	return f
}

func (f *deployFixture) addOwner(t *testing.T, store *models.Store) *models.User {
	t.Helper()
	owner := &models.User{Email: fmt.Sprintf("owner-%s@example.com", store.Subdomain)}
	owner.ID = store.UserID
	require.NoError(t, f.userRepo.Create(owner))
	return owner
}

func pendingStore(subdomain string) *models.Store {
	store := &models.Store{
		UserID:             uuid.New(),
		Name:               "Acme Goods",
		Subdomain:          subdomain,
		TemplateKind:       models.TemplateKindGoods,
		PaymentTier:        models.PaymentTierPro,
		SubscriptionStatus: models.SubscriptionStatusActive,
		CanDeploy:          true,
		Status:             models.StoreStatusPending,
	}
	store.ID = uuid.New()
	return store
}

func deployedStore(subdomain string) *models.Store {
	store := pendingStore(subdomain)
	store.Status = models.StoreStatusDeployed
	store.VercelProjectID = "prj_" + subdomain
	store.VercelDeploymentID = "dpl_" + subdomain
	store.DeploymentURL = "https://" + subdomain + ".gosovereign.app"
	now := time.Now().UTC()
	store.DeployedAt = &now
	return store
}

func envValue(t *testing.T, vars []EnvVar, key string) string {
	t.Helper()
	for _, v := range vars {
		if v.Key == key {
			return v.Value
		}
	}
	t.Fatalf("env var %s not found", key)
	return ""
}

func TestDeploy_FullPipeline(t *testing.T) {
	store := pendingStore("acme")
	f := newDeployFixture(t, store)
	owner := f.addOwner(t, store)

	result, err := f.service.Deploy(context.Background(), store.UserID, &store.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "dpl_1", result.DeploymentID)
	assert.Equal(t, "https://acme-xyz.vercel.app", result.DeploymentURL)
	assert.Equal(t, "https://acme.gosovereign.app", result.StoreURL)
	assert.Equal(t, "https://vercel.com/acme", result.ProjectURL)

	// Hosting linkage and status persisted
	persisted, err := f.storeRepo.GetByID(store.ID)
	require.NoError(t, err)
	assert.Equal(t, "prj_acme", persisted.VercelProjectID)
	assert.Equal(t, "dpl_1", persisted.VercelDeploymentID)
	assert.Equal(t, "https://acme.gosovereign.app", persisted.DeploymentURL)
	assert.Equal(t, models.StoreStatusDeploying, persisted.Status)

	// Pro tier env vars made it to the provider
	assert.Equal(t, "unlimited", envValue(t, f.upsertedEnv, "NEXT_PUBLIC_MAX_PRODUCTS"))
	assert.Equal(t, "true", envValue(t, f.upsertedEnv, "NEXT_PUBLIC_CUSTOM_DOMAIN_ENABLED"))
	assert.Equal(t, "https://acme.gosovereign.app", envValue(t, f.upsertedEnv, "NEXT_PUBLIC_STORE_URL"))

	// Audit trail: the provider-facing unit is bracketed by a started and a
	// terminal row under the same step name
	assert.Equal(t, []string{stepDeploymentStarted, stepVercelDeploy, stepVercelDeploy, stepPasswordResetEmail}, f.logRepo.steps())
	assert.Equal(t, models.LogStatusStarted, f.logRepo.entries[1].Status)
	deployLog := f.logRepo.findStep(stepVercelDeploy)
	require.NotNil(t, deployLog)
	assert.Equal(t, models.LogStatusCompleted, deployLog.Status)
	assert.Contains(t, string(deployLog.Metadata), `"project_id":"prj_acme"`)
	assert.Contains(t, string(deployLog.Metadata), `"store_url":"https://acme.gosovereign.app"`)

	// Owner got their credentials
	require.Len(t, f.notifier.sent, 1)
	email := f.notifier.sent[0]
	assert.Equal(t, owner.Email, email.To)
	assert.Equal(t, "https://acme.gosovereign.app", email.StoreURL)
	assert.Equal(t, DerivedAdminPassword(store.ID), email.AdminPassword)
	assert.Contains(t, email.ResetURL, "https://acme.gosovereign.app/admin/reset-password?token=")
}

func TestDeploy_AlreadyDeployedShortCircuits(t *testing.T) {
	store := deployedStore("acme")
	f := newDeployFixture(t, store)

	hostingCalls := 0
	f.hosting.GetProjectByNameFunc = func(ctx context.Context, name string) (*VercelProject, error) {
		hostingCalls++
		return nil, apperrors.ErrProjectNotFound
	}
	f.hosting.CreateDeploymentFunc = func(ctx context.Context, req CreateDeploymentRequest) (*VercelDeployment, error) {
		hostingCalls++
		return nil, nil
	}

	result, err := f.service.Deploy(context.Background(), store.UserID, &store.ID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "store is already deployed", result.Message)
	assert.Equal(t, store.DeploymentURL, result.StoreURL)
	assert.Equal(t, 0, hostingCalls)
	assert.Empty(t, f.logRepo.entries)
}

func TestDeploy_GateOutranksShortCircuit(t *testing.T) {
	store := deployedStore("acme")
	store.CanDeploy = false
	store.SubscriptionStatus = models.SubscriptionStatusPastDue
	f := newDeployFixture(t, store)

	_, err := f.service.Deploy(context.Background(), store.UserID, &store.ID)
	require.Error(t, err)

	dnaErr, ok := apperrors.AsDeployNotAllowed(err)
	require.True(t, ok)
	assert.Contains(t, dnaErr.Reason, "past due")
	assert.Equal(t, string(models.SubscriptionStatusPastDue), dnaErr.SubscriptionStatus)
}

func TestDeploy_DefaultsToLatestStore(t *testing.T) {
	userID := uuid.New()
	older := pendingStore("older")
	older.UserID = userID
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := pendingStore("newer")
	newer.UserID = userID
	newer.CreatedAt = time.Now()

	f := newDeployFixture(t, older, newer)
	f.addOwner(t, newer)

	result, err := f.service.Deploy(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://newer.gosovereign.app", result.StoreURL)
}

func TestDeploy_OwnershipEnforced(t *testing.T) {
	store := pendingStore("acme")
	f := newDeployFixture(t, store)

	_, err := f.service.Deploy(context.Background(), uuid.New(), &store.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotStoreOwner)
}

func TestDeploy_BillingGate(t *testing.T) {
	tests := []struct {
		name         string
		subscription models.SubscriptionStatus
		wantReason   string
	}{
		{"past due", models.SubscriptionStatusPastDue, "past due"},
		{"cancelled", models.SubscriptionStatusCancelled, "resubscribe"},
		{"never paid", models.SubscriptionStatusNone, "payment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := pendingStore("acme")
			store.CanDeploy = false
			store.SubscriptionStatus = tt.subscription
			f := newDeployFixture(t, store)

			_, err := f.service.Deploy(context.Background(), store.UserID, &store.ID)
			require.Error(t, err)

			dnaErr, ok := apperrors.AsDeployNotAllowed(err)
			require.True(t, ok)
			assert.Contains(t, dnaErr.Reason, tt.wantReason)
			assert.Equal(t, string(tt.subscription), dnaErr.SubscriptionStatus)
		})
	}
}

func TestDeploy_EntitledStorePassesGate(t *testing.T) {
	store := pendingStore("acme")
	store.SubscriptionStatus = models.SubscriptionStatusActive
	f := newDeployFixture(t, store)
	f.addOwner(t, store)

	_, err := f.service.Deploy(context.Background(), store.UserID, &store.ID)
	assert.NoError(t, err)
}

func TestDeploy_PipelineFailureMarksStoreFailed(t *testing.T) {
	store := pendingStore("acme")
	f := newDeployFixture(t, store)
	f.hosting.UpsertEnvFunc = func(ctx context.Context, projectID string, vars []EnvVar) error {
		return apperrors.NewProviderError("env_upsert", "hosting provider request failed (env_upsert)", "boom")
	}

	_, err := f.service.Deploy(context.Background(), store.UserID, &store.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsProvider(err))

	persisted, err := f.storeRepo.GetByID(store.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StoreStatusFailed, persisted.Status)

	// Started and failed rows share the step name family
	assert.Equal(t, []string{stepDeploymentStarted, stepVercelDeploy, stepVercelDeploy}, f.logRepo.steps())
	failLog := f.logRepo.findStep(stepVercelDeploy)
	require.NotNil(t, failLog)
	assert.Equal(t, models.LogStatusFailed, failLog.Status)

	assert.Empty(t, f.notifier.sent)
}

func TestDeploy_EmailFailureDoesNotFailDeployment(t *testing.T) {
	store := pendingStore("acme")
	f := newDeployFixture(t, store)
	f.addOwner(t, store)
	f.notifier.sendErr = fmt.Errorf("mail provider down")

	result, err := f.service.Deploy(context.Background(), store.UserID, &store.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	emailLog := f.logRepo.findStep(stepPasswordResetEmail)
	require.NotNil(t, emailLog)
	assert.Equal(t, models.LogStatusFailed, emailLog.Status)
}

func TestDeploy_AuditWriteFailureIsSwallowed(t *testing.T) {
	store := pendingStore("acme")
	f := newDeployFixture(t, store)
	f.addOwner(t, store)
	f.logRepo.failAll = true

	result, err := f.service.Deploy(context.Background(), store.UserID, &store.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestAdminRedeploy_BypassesGateAndShortCircuit(t *testing.T) {
	store := deployedStore("acme")
	store.CanDeploy = false
	store.SubscriptionStatus = models.SubscriptionStatusCancelled
	f := newDeployFixture(t, store)
	f.addOwner(t, store)

	result, err := f.service.AdminRedeploy(context.Background(), store.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "dpl_1", result.DeploymentID)

	// A real pipeline ran, not the short-circuit
	assert.NotEmpty(t, f.logRepo.entries)
}

func TestAdminRedeploy_UnknownStore(t *testing.T) {
	f := newDeployFixture(t)

	_, err := f.service.AdminRedeploy(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrStoreNotFound)
}

func TestBulkRedeploy(t *testing.T) {
	good1 := deployedStore("alpha")
	bad := deployedStore("bravo")
	good2 := deployedStore("charlie")
	f := newDeployFixture(t, good1, bad, good2)
	f.addOwner(t, good1)
	f.addOwner(t, bad)
	f.addOwner(t, good2)

	f.hosting.CreateDeploymentFunc = func(ctx context.Context, req CreateDeploymentRequest) (*VercelDeployment, error) {
		if req.ProjectName == "bravo" {
			return nil, apperrors.NewProviderError("deployment_create", "hosting provider request failed (deployment_create)", "boom")
		}
		return &VercelDeployment{ID: "dpl_" + req.ProjectName, URL: req.ProjectName + "-xyz.vercel.app"}, nil
	}

	summary, err := f.service.BulkRedeploy(context.Background())
	require.NoError(t, err)

	assert.False(t, summary.Success)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 3)

	for _, r := range summary.Results {
		if r.StoreID == bad.ID {
			assert.False(t, r.Success)
			assert.NotEmpty(t, r.Error)
		} else {
			assert.True(t, r.Success)
			assert.NotEmpty(t, r.DeploymentURL)
		}
	}

	// Paced between stores, not before the first
	assert.Equal(t, 2, f.pacer.waits)

	// Bulk steps carry the admin sweep prefix
	for _, step := range f.logRepo.steps() {
		assert.Contains(t, step, bulkLogPrefix)
	}
}

func TestBulkRedeploy_AllSucceed(t *testing.T) {
	a := deployedStore("alpha")
	b := deployedStore("bravo")
	f := newDeployFixture(t, a, b)
	f.addOwner(t, a)
	f.addOwner(t, b)

	summary, err := f.service.BulkRedeploy(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.Completed)
	assert.Zero(t, summary.Failed)
}

func TestDeploymentStatus_ReadyPromotesStore(t *testing.T) {
	store := pendingStore("acme")
	store.Status = models.StoreStatusDeploying
	store.VercelDeploymentID = "dpl_1"
	store.DeploymentURL = "https://acme.gosovereign.app"
	f := newDeployFixture(t, store)
	f.hosting.GetDeploymentFunc = func(ctx context.Context, deploymentID string) (*VercelDeployment, error) {
		return &VercelDeployment{ID: deploymentID, ReadyState: "READY", URL: "acme-xyz.vercel.app"}, nil
	}

	result, err := f.service.DeploymentStatus(context.Background(), store.UserID, false, "dpl_1", false)
	require.NoError(t, err)

	assert.Equal(t, "READY", result.Status)
	assert.Equal(t, "https://acme.gosovereign.app", result.URL)

	persisted, err := f.storeRepo.GetByID(store.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StoreStatusDeployed, persisted.Status)

	completeLog := f.logRepo.findStep(stepDeploymentComplete)
	require.NotNil(t, completeLog)
	assert.Equal(t, models.LogStatusCompleted, completeLog.Status)
}

func TestDeploymentStatus_ErrorDemotesStore(t *testing.T) {
	store := pendingStore("acme")
	store.Status = models.StoreStatusDeploying
	store.VercelDeploymentID = "dpl_1"
	f := newDeployFixture(t, store)
	f.hosting.GetDeploymentFunc = func(ctx context.Context, deploymentID string) (*VercelDeployment, error) {
		return &VercelDeployment{ID: deploymentID, ReadyState: "ERROR"}, nil
	}

	result, err := f.service.DeploymentStatus(context.Background(), store.UserID, false, "dpl_1", false)
	require.NoError(t, err)

	assert.Equal(t, "ERROR", result.Status)
	assert.Equal(t, "deployment failed", result.Error)

	persisted, err := f.storeRepo.GetByID(store.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StoreStatusFailed, persisted.Status)

	failLog := f.logRepo.findStep(stepDeploymentFailed)
	require.NotNil(t, failLog)
}

func TestDeploymentStatus_WaitBlocksUntilReady(t *testing.T) {
	store := pendingStore("acme")
	store.Status = models.StoreStatusDeploying
	store.VercelDeploymentID = "dpl_1"
	store.DeploymentURL = "https://acme.gosovereign.app"
	f := newDeployFixture(t, store)

	states := []string{"QUEUED", "BUILDING", "READY"}
	calls := 0
	f.hosting.GetDeploymentFunc = func(ctx context.Context, deploymentID string) (*VercelDeployment, error) {
		state := states[calls]
		calls++
		return &VercelDeployment{ID: deploymentID, ReadyState: state, URL: "acme-xyz.vercel.app"}, nil
	}
	f.service.poller = &StatusPoller{hosting: f.hosting, interval: time.Millisecond, attempts: 10}

	result, err := f.service.DeploymentStatus(context.Background(), store.UserID, false, "dpl_1", true)
	require.NoError(t, err)

	assert.Equal(t, "READY", result.Status)
	assert.Equal(t, 3, calls)

	persisted, err := f.storeRepo.GetByID(store.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StoreStatusDeployed, persisted.Status)
}

func TestDeploymentStatus_WaitTimeoutDoesNotDemoteStore(t *testing.T) {
	store := pendingStore("acme")
	store.Status = models.StoreStatusDeploying
	store.VercelDeploymentID = "dpl_1"
	f := newDeployFixture(t, store)

	f.hosting.GetDeploymentFunc = func(ctx context.Context, deploymentID string) (*VercelDeployment, error) {
		return &VercelDeployment{ID: deploymentID, ReadyState: "BUILDING"}, nil
	}
	f.service.poller = &StatusPoller{hosting: f.hosting, interval: time.Millisecond, attempts: 3}

	result, err := f.service.DeploymentStatus(context.Background(), store.UserID, false, "dpl_1", true)
	require.NoError(t, err)

	assert.Equal(t, "BUILDING", result.Status)
	assert.Equal(t, "deployment is taking longer than expected", result.Error)

	// The build may still finish on its own
	persisted, err := f.storeRepo.GetByID(store.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StoreStatusDeploying, persisted.Status)
	assert.Nil(t, f.logRepo.findStep(stepDeploymentFailed))
}

func TestDeploymentStatus_AlreadyPromotedIsIdempotent(t *testing.T) {
	store := deployedStore("acme")
	f := newDeployFixture(t, store)
	f.hosting.GetDeploymentFunc = func(ctx context.Context, deploymentID string) (*VercelDeployment, error) {
		return &VercelDeployment{ID: deploymentID, ReadyState: "READY"}, nil
	}

	result, err := f.service.DeploymentStatus(context.Background(), store.UserID, false, store.VercelDeploymentID, false)
	require.NoError(t, err)
	assert.Equal(t, "READY", result.Status)

	// No duplicate completion entry for a store that was already deployed
	assert.Empty(t, f.logRepo.entries)
}

func TestDeploymentStatus_UnknownDeployment(t *testing.T) {
	f := newDeployFixture(t)

	_, err := f.service.DeploymentStatus(context.Background(), uuid.New(), false, "dpl_missing", false)
	assert.ErrorIs(t, err, apperrors.ErrDeploymentNotFound)
}

func TestDeploymentStatus_OwnershipEnforced(t *testing.T) {
	store := deployedStore("acme")
	f := newDeployFixture(t, store)

	_, err := f.service.DeploymentStatus(context.Background(), uuid.New(), false, store.VercelDeploymentID, false)
	assert.ErrorIs(t, err, apperrors.ErrNotStoreOwner)

	// Admins can read any store's deployment
	f.hosting.GetDeploymentFunc = func(ctx context.Context, deploymentID string) (*VercelDeployment, error) {
		return &VercelDeployment{ID: deploymentID, ReadyState: "BUILDING"}, nil
	}
	result, err := f.service.DeploymentStatus(context.Background(), uuid.New(), true, store.VercelDeploymentID, false)
	require.NoError(t, err)
	assert.Equal(t, "BUILDING", result.Status)
}
