package repository

import (
	"gosovereign-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeploymentLogRepository handles database operations for the append-only
// deployment audit trail. Rows are inserted and read, never mutated.
type DeploymentLogRepository struct {
	db *gorm.DB
}

// NewDeploymentLogRepository creates a new deployment log repository
func NewDeploymentLogRepository(db *gorm.DB) *DeploymentLogRepository {
	return &DeploymentLogRepository{db: db}
}

// Create appends a new deployment log entry
func (r *DeploymentLogRepository) Create(log *models.DeploymentLog) error {
	return r.db.Create(log).Error
}

// GetByStoreID retrieves log entries for a store with pagination,
// newest first
func (r *DeploymentLogRepository) GetByStoreID(storeID uuid.UUID, limit, offset int) ([]models.DeploymentLog, int64, error) {
	var logs []models.DeploymentLog
	var total int64

	if err := r.db.Model(&models.DeploymentLog{}).Where("store_id = ?", storeID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("store_id = ?", storeID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// CountByStoreID counts log entries for a store
func (r *DeploymentLogRepository) CountByStoreID(storeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.DeploymentLog{}).Where("store_id = ?", storeID).Count(&count).Error
	return count, err
}
