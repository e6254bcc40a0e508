package testutils

import (
	"time"

	"gosovereign-backend/internal/database/models"

	"github.com/google/uuid"
)

// UserFactory provides methods to create test User data
type UserFactory struct{}

// NewUserFactory creates a new UserFactory
func NewUserFactory() *UserFactory {
	return &UserFactory{}
}

// Create creates a test User with default values
func (f *UserFactory) Create() *models.User {
	id := uuid.New()
	return &models.User{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Email: "owner-" + id.String()[:8] + "@example.com",
		Name:  "Test Owner",
	}
}

// WithEmail sets a custom email for the user
func (f *UserFactory) WithEmail(email string) *models.User {
	user := f.Create()
	user.Email = email
	return user
}

// StoreFactory provides methods to create test Store data
type StoreFactory struct{}

// NewStoreFactory creates a new StoreFactory
func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

// Create creates a test Store with default values, owned by ownerID
func (f *StoreFactory) Create(ownerID uuid.UUID) *models.Store {
	id := uuid.New()
	return &models.Store{
		BaseModel: models.BaseModel{
			ID:        id,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		UserID:             ownerID,
		Name:               "Test Store",
		Subdomain:          "store-" + id.String()[:8],
		TemplateKind:       models.TemplateKindGoods,
		BrandColor:         "#336699",
		ThemePreset:        "classic",
		Currency:           "USD",
		PaymentTier:        models.PaymentTierStarter,
		SubscriptionStatus: models.SubscriptionStatusActive,
		CanDeploy:          true,
		Status:             models.StoreStatusPending,
	}
}

// Deployed creates a store that has completed a deployment
func (f *StoreFactory) Deployed(ownerID uuid.UUID) *models.Store {
	store := f.Create(ownerID)
	now := time.Now()
	store.Status = models.StoreStatusDeployed
	store.VercelProjectID = "prj_" + store.ID.String()[:8]
	store.VercelDeploymentID = "dpl_" + store.ID.String()[:8]
	store.DeploymentURL = "https://" + store.Subdomain + ".test.gosovereign.app"
	store.DeployedAt = &now
	return store
}

// WithSubdomain sets a custom subdomain for the store
func (f *StoreFactory) WithSubdomain(ownerID uuid.UUID, subdomain string) *models.Store {
	store := f.Create(ownerID)
	store.Subdomain = subdomain
	return store
}

// DeploymentLogFactory provides methods to create test DeploymentLog data
type DeploymentLogFactory struct{}

// NewDeploymentLogFactory creates a new DeploymentLogFactory
func NewDeploymentLogFactory() *DeploymentLogFactory {
	return &DeploymentLogFactory{}
}

// Create creates a test DeploymentLog entry for a store
func (f *DeploymentLogFactory) Create(storeID uuid.UUID) *models.DeploymentLog {
	return &models.DeploymentLog{
		ID:        uuid.New(),
		StoreID:   storeID,
		Step:      "vercel_deploy",
		Status:    models.LogStatusCompleted,
		Message:   "deployment triggered",
		CreatedAt: time.Now(),
	}
}

// WithStep creates a log entry with a custom step and status
func (f *DeploymentLogFactory) WithStep(storeID uuid.UUID, step string, status models.DeploymentLogStatus) *models.DeploymentLog {
	entry := f.Create(storeID)
	entry.Step = step
	entry.Status = status
	return entry
}

// FactorySet bundles all factories for convenient suite setup
type FactorySet struct {
	User          *UserFactory
	Store         *StoreFactory
	DeploymentLog *DeploymentLogFactory
}

// NewFactorySet creates a FactorySet with all factories
func NewFactorySet() *FactorySet {
	return &FactorySet{
		User:          NewUserFactory(),
		Store:         NewStoreFactory(),
		DeploymentLog: NewDeploymentLogFactory(),
	}
}
