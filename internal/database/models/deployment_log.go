package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeploymentLog is one row of the append-only deployment audit trail.
// Rows are created by the orchestrator at the start and end of each pipeline
// stage and are never updated or deleted afterward.
type DeploymentLog struct {
	ID        uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	StoreID   uuid.UUID           `json:"store_id" gorm:"type:uuid;not null;index" validate:"required"`
	Step      string              `json:"step" gorm:"size:100;not null" validate:"required"`
	Status    DeploymentLogStatus `json:"status" gorm:"size:20;not null" validate:"required"`
	Message   string              `json:"message" gorm:"type:text"`
	Metadata  json.RawMessage     `json:"metadata" gorm:"type:jsonb"`
	CreatedAt time.Time           `json:"created_at"`

	// Relationships
	Store Store `json:"store,omitempty" gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for DeploymentLog
func (DeploymentLog) TableName() string {
	return "deployment_logs"
}

// BeforeCreate sets the UUID if not already set
func (l *DeploymentLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
