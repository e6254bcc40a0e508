package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gosovereign-backend/internal/database/models"
)

// mockHostingClient is a func-field fake for the hosting provider API
type mockHostingClient struct {
	GetProjectByNameFunc    func(ctx context.Context, name string) (*VercelProject, error)
	CreateProjectFunc       func(ctx context.Context, req CreateProjectRequest) (*VercelProject, error)
	UpsertEnvFunc           func(ctx context.Context, projectID string, vars []EnvVar) error
	CreateDeploymentFunc    func(ctx context.Context, req CreateDeploymentRequest) (*VercelDeployment, error)
	GetDeploymentFunc       func(ctx context.Context, deploymentID string) (*VercelDeployment, error)
	AddProjectDomainFunc    func(ctx context.Context, projectID, domain string) (*VercelDomain, error)
	GetProjectDomainFunc    func(ctx context.Context, projectID, domain string) (*VercelDomain, error)
	RemoveProjectDomainFunc func(ctx context.Context, projectID, domain string) error
}

func (m *mockHostingClient) GetProjectByName(ctx context.Context, name string) (*VercelProject, error) {
	if m.GetProjectByNameFunc != nil {
		return m.GetProjectByNameFunc(ctx, name)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockHostingClient) CreateProject(ctx context.Context, req CreateProjectRequest) (*VercelProject, error) {
	if m.CreateProjectFunc != nil {
		return m.CreateProjectFunc(ctx, req)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockHostingClient) UpsertEnv(ctx context.Context, projectID string, vars []EnvVar) error {
	if m.UpsertEnvFunc != nil {
		return m.UpsertEnvFunc(ctx, projectID, vars)
	}
	return fmt.Errorf("not implemented")
}

func (m *mockHostingClient) CreateDeployment(ctx context.Context, req CreateDeploymentRequest) (*VercelDeployment, error) {
	if m.CreateDeploymentFunc != nil {
		return m.CreateDeploymentFunc(ctx, req)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockHostingClient) GetDeployment(ctx context.Context, deploymentID string) (*VercelDeployment, error) {
	if m.GetDeploymentFunc != nil {
		return m.GetDeploymentFunc(ctx, deploymentID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockHostingClient) AddProjectDomain(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
	if m.AddProjectDomainFunc != nil {
		return m.AddProjectDomainFunc(ctx, projectID, domain)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockHostingClient) GetProjectDomain(ctx context.Context, projectID, domain string) (*VercelDomain, error) {
	if m.GetProjectDomainFunc != nil {
		return m.GetProjectDomainFunc(ctx, projectID, domain)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockHostingClient) RemoveProjectDomain(ctx context.Context, projectID, domain string) error {
	if m.RemoveProjectDomainFunc != nil {
		return m.RemoveProjectDomainFunc(ctx, projectID, domain)
	}
	return fmt.Errorf("not implemented")
}

// mockStoreRepo is an in-memory store repository keyed by store id
type mockStoreRepo struct {
	stores map[uuid.UUID]*models.Store

	updateFieldsCalls []map[string]interface{}
}

func newMockStoreRepo(stores ...*models.Store) *mockStoreRepo {
	repo := &mockStoreRepo{stores: make(map[uuid.UUID]*models.Store)}
	for _, s := range stores {
		repo.stores[s.ID] = s
	}
	return repo
}

func (m *mockStoreRepo) Create(store *models.Store) error {
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	m.stores[store.ID] = store
	return nil
}

func (m *mockStoreRepo) GetByID(id uuid.UUID) (*models.Store, error) {
	if s, ok := m.stores[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStoreRepo) GetBySubdomain(subdomain string) (*models.Store, error) {
	for _, s := range m.stores {
		if s.Subdomain == subdomain {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStoreRepo) GetByDeploymentID(deploymentID string) (*models.Store, error) {
	for _, s := range m.stores {
		if s.VercelDeploymentID == deploymentID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStoreRepo) GetByUserID(userID uuid.UUID, limit, offset int) ([]models.Store, int64, error) {
	var out []models.Store
	for _, s := range m.stores {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockStoreRepo) GetLatestByUserID(userID uuid.UUID) (*models.Store, error) {
	var latest *models.Store
	for _, s := range m.stores {
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *mockStoreRepo) GetDeployed() ([]models.Store, error) {
	var out []models.Store
	for _, s := range m.stores {
		if s.Status == models.StoreStatusDeployed {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockStoreRepo) Update(store *models.Store) error {
	m.stores[store.ID] = store
	return nil
}

func (m *mockStoreRepo) UpdateFields(id uuid.UUID, updates map[string]interface{}) error {
	m.updateFieldsCalls = append(m.updateFieldsCalls, updates)
	store, ok := m.stores[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range updates {
		switch k {
		case "status":
			store.Status = v.(models.StoreStatus)
		case "custom_domain":
			store.CustomDomain = v.(string)
		case "vercel_project_id":
			store.VercelProjectID = v.(string)
		case "vercel_deployment_id":
			store.VercelDeploymentID = v.(string)
		case "deployment_url":
			store.DeploymentURL = v.(string)
		case "reset_token":
			store.ResetToken = v.(string)
		}
	}
	return nil
}

func (m *mockStoreRepo) Delete(id uuid.UUID) error {
	delete(m.stores, id)
	return nil
}

// mockLogRepo records deployment log entries in memory
type mockLogRepo struct {
	entries []models.DeploymentLog
	failAll bool
}

func (m *mockLogRepo) Create(entry *models.DeploymentLog) error {
	if m.failAll {
		return fmt.Errorf("log write refused")
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockLogRepo) GetByStoreID(storeID uuid.UUID, limit, offset int) ([]models.DeploymentLog, int64, error) {
	var out []models.DeploymentLog
	for _, e := range m.entries {
		if e.StoreID == storeID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockLogRepo) CountByStoreID(storeID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range m.entries {
		if e.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

// steps returns the recorded step names in order
func (m *mockLogRepo) steps() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Step)
	}
	return out
}

// findStep returns the newest entry for a step, i.e. its terminal row when
// the step was logged as a started/finished pair
func (m *mockLogRepo) findStep(step string) *models.DeploymentLog {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Step == step {
			return &m.entries[i]
		}
	}
	return nil
}

// mockUserRepo is an in-memory user repository
type mockUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	repo := &mockUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (m *mockUserRepo) Create(user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// mockRepoResolver returns a fixed repository id
type mockRepoResolver struct {
	ResolveRepoIDFunc func(ctx context.Context, fullName string) (int64, error)
}

func (m *mockRepoResolver) ResolveRepoID(ctx context.Context, fullName string) (int64, error) {
	if m.ResolveRepoIDFunc != nil {
		return m.ResolveRepoIDFunc(ctx, fullName)
	}
	return 4242, nil
}

// mockNotifier records sent emails
type mockNotifier struct {
	sent    []StoreLiveEmail
	sendErr error
}

func (m *mockNotifier) SendStoreLiveEmail(ctx context.Context, req StoreLiveEmail) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, req)
	return nil
}

// mockPacer counts Wait calls without sleeping
type mockPacer struct {
	waits int
	err   error
}

func (m *mockPacer) Wait(ctx context.Context) error {
	m.waits++
	return m.err
}
