package repository

import (
	"gosovereign-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreRepository handles database operations for stores
type StoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// Create creates a new store
func (r *StoreRepository) Create(store *models.Store) error {
	return r.db.Create(store).Error
}

// GetByID retrieves a store by ID
func (r *StoreRepository) GetByID(id uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.First(&store, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// GetBySubdomain retrieves a store by its unique subdomain slug
func (r *StoreRepository) GetBySubdomain(subdomain string) (*models.Store, error) {
	var store models.Store
	err := r.db.First(&store, "subdomain = ?", subdomain).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// GetByDeploymentID retrieves the store owning a hosting deployment.
// The status-poll endpoint is keyed by deployment id, not store id.
func (r *StoreRepository) GetByDeploymentID(deploymentID string) (*models.Store, error) {
	var store models.Store
	err := r.db.First(&store, "vercel_deployment_id = ?", deploymentID).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// GetByUserID retrieves all stores owned by a user with pagination,
// newest first
func (r *StoreRepository) GetByUserID(userID uuid.UUID, limit, offset int) ([]models.Store, int64, error) {
	var stores []models.Store
	var total int64

	if err := r.db.Model(&models.Store{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&stores).Error
	if err != nil {
		return nil, 0, err
	}

	return stores, total, nil
}

// GetLatestByUserID retrieves the caller's most recently created store.
// Used as the fallback when a deploy request omits store_id.
func (r *StoreRepository) GetLatestByUserID(userID uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// GetDeployed retrieves every store currently in status deployed, ordered by
// ascending creation time. The bulk redeploy path iterates this list.
func (r *StoreRepository) GetDeployed() ([]models.Store, error) {
	var stores []models.Store
	err := r.db.Where("status = ?", models.StoreStatusDeployed).
		Order("created_at ASC").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

// Update saves the full store record
func (r *StoreRepository) Update(store *models.Store) error {
	return r.db.Save(store).Error
}

// UpdateFields applies a primary-key-scoped partial update
func (r *StoreRepository) UpdateFields(id uuid.UUID, updates map[string]interface{}) error {
	return r.db.Model(&models.Store{}).Where("id = ?", id).Updates(updates).Error
}

// Delete deletes a store
func (r *StoreRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Store{}, "id = ?", id).Error
}
