package repository

import (
	"gosovereign-backend/internal/database/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/repository_mocks.go -package=mocks

// StoreRepositoryInterface defines the interface for store repository operations
type StoreRepositoryInterface interface {
	Create(store *models.Store) error
	GetByID(id uuid.UUID) (*models.Store, error)
	GetBySubdomain(subdomain string) (*models.Store, error)
	GetByDeploymentID(deploymentID string) (*models.Store, error)
	GetByUserID(userID uuid.UUID, limit, offset int) ([]models.Store, int64, error)
	GetLatestByUserID(userID uuid.UUID) (*models.Store, error)
	GetDeployed() ([]models.Store, error)
	Update(store *models.Store) error
	UpdateFields(id uuid.UUID, updates map[string]interface{}) error
	Delete(id uuid.UUID) error
}

// DeploymentLogRepositoryInterface defines the interface for the append-only
// deployment audit trail. There are intentionally no update or delete
// operations.
type DeploymentLogRepositoryInterface interface {
	Create(log *models.DeploymentLog) error
	GetByStoreID(storeID uuid.UUID, limit, offset int) ([]models.DeploymentLog, int64, error)
	CountByStoreID(storeID uuid.UUID) (int64, error)
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}
