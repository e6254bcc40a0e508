package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Store is the deployable unit: one configured website owned by one user.
type Store struct {
	BaseModel
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index" validate:"required"`
	Name         string    `json:"name" gorm:"size:100;not null" validate:"required,min=1,max=100"`
	Subdomain    string    `json:"subdomain" gorm:"size:63;not null;uniqueIndex" validate:"required,min=1,max=63"`
	CustomDomain string    `json:"custom_domain" gorm:"size:253"`
	TemplateKind TemplateKind `json:"template_kind" gorm:"size:20;not null;default:'goods'"`

	// Branding and wizard configuration
	LogoURL      string `json:"logo_url" gorm:"size:500"`
	BrandColor   string `json:"brand_color" gorm:"size:20"`
	ThemePreset  string `json:"theme_preset" gorm:"size:40"`
	Tagline      string `json:"tagline" gorm:"size:200"`
	AboutText    string `json:"about_text" gorm:"type:text"`
	ContactEmail string `json:"contact_email" gorm:"size:255"`
	Currency     string `json:"currency" gorm:"size:3;default:'USD'"`

	// Feature flags
	ShippingEnabled bool `json:"shipping_enabled"`
	TaxEnabled      bool `json:"tax_enabled"`
	BlogEnabled     bool `json:"blog_enabled"`
	LeadGenEnabled  bool `json:"leadgen_enabled"`

	// Structured wizard blobs
	ShippingCountries string          `json:"shipping_countries" gorm:"size:500"`
	ShippingZones     json.RawMessage `json:"shipping_zones" gorm:"type:jsonb"`
	SocialLinks       json.RawMessage `json:"social_links" gorm:"type:jsonb"`
	SEO               json.RawMessage `json:"seo" gorm:"type:jsonb"`

	// Payment and entitlement
	PaymentTier        PaymentTier        `json:"payment_tier" gorm:"size:20;default:'none'"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status" gorm:"size:20;default:'none'"`
	CanDeploy          bool               `json:"can_deploy" gorm:"not null;default:false"`
	SubscriptionEndsAt *time.Time         `json:"subscription_ends_at"`
	StripeAccountID    string             `json:"stripe_account_id" gorm:"size:100"`

	// Hosting linkage
	VercelProjectID    string `json:"vercel_project_id" gorm:"size:100;index"`
	VercelDeploymentID string `json:"vercel_deployment_id" gorm:"size:100"`
	DeploymentURL      string `json:"deployment_url" gorm:"size:500"`

	// Time-boxed admin password reset token sent on first successful deploy
	ResetToken          string     `json:"-" gorm:"size:500"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	Status     StoreStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	DeployedAt *time.Time  `json:"deployed_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Store
func (Store) TableName() string {
	return "stores"
}

// IsDeployed reports whether the store has reached deployed with a live URL.
func (s *Store) IsDeployed() bool {
	return s.Status == StoreStatusDeployed && s.DeploymentURL != ""
}
