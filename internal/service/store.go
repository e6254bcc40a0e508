package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gosovereign-backend/internal/database/models"
	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/logger"
	"gosovereign-backend/internal/repository"
)

// subdomainRegex accepts DNS label slugs: lowercase alphanumerics and
// hyphens, no leading or trailing hyphen, at most 63 characters.
var subdomainRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// UpdateStoreInput carries the mutable store fields. Nil pointers leave the
// field untouched.
type UpdateStoreInput struct {
	Name              *string
	Subdomain         *string
	TemplateKind      *models.TemplateKind
	LogoURL           *string
	BrandColor        *string
	ThemePreset       *string
	Tagline           *string
	AboutText         *string
	ContactEmail      *string
	Currency          *string
	ShippingEnabled   *bool
	TaxEnabled        *bool
	BlogEnabled       *bool
	LeadGenEnabled    *bool
	ShippingCountries *string
	ShippingZones     json.RawMessage
	SocialLinks       json.RawMessage
	SEO               json.RawMessage
}

// StoreService handles store records: creation from the setup wizard,
// owner-scoped reads and updates, and the deployment audit trail.
type StoreService struct {
	storeRepo repository.StoreRepositoryInterface
	logRepo   repository.DeploymentLogRepositoryInterface
	validator *validator.Validate
}

// NewStoreService creates a new store service
func NewStoreService(storeRepo repository.StoreRepositoryInterface, logRepo repository.DeploymentLogRepositoryInterface, validator *validator.Validate) *StoreService {
	return &StoreService{
		storeRepo: storeRepo,
		logRepo:   logRepo,
		validator: validator,
	}
}

// Create validates and persists a new store for the owner. Subdomains are
// normalized to lowercase and must be unique across the platform.
func (s *StoreService) Create(ctx context.Context, store *models.Store) error {
	store.Subdomain = strings.ToLower(strings.TrimSpace(store.Subdomain))
	if err := s.validator.Struct(store); err != nil {
		return apperrors.NewValidationError("store", err.Error())
	}
	if !subdomainRegex.MatchString(store.Subdomain) {
		return apperrors.NewValidationError("subdomain", "must be a lowercase slug of letters, digits and hyphens")
	}
	if !store.TemplateKind.IsValid() {
		return apperrors.NewValidationError("template_kind", fmt.Sprintf("unknown template kind %q", store.TemplateKind))
	}

	if _, err := s.storeRepo.GetBySubdomain(store.Subdomain); err == nil {
		return &apperrors.ConflictError{Message: fmt.Sprintf("subdomain %s is already taken", store.Subdomain)}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	store.Status = models.StoreStatusPending
	if err := s.storeRepo.Create(store); err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"store_id":  store.ID,
		"subdomain": store.Subdomain,
	}).Info("Store created")
	return nil
}

// GetForUser loads a store and enforces ownership. Platform admins may read
// any store.
func (s *StoreService) GetForUser(storeID, userID uuid.UUID, isAdmin bool) (*models.Store, error) {
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStoreNotFound
		}
		return nil, err
	}
	if !isAdmin && store.UserID != userID {
		return nil, apperrors.ErrNotStoreOwner
	}
	return store, nil
}

// Get loads a store without an ownership check. Used by the domain
// management endpoints, which authenticate with the store's own derived
// credential instead of a platform session.
func (s *StoreService) Get(storeID uuid.UUID) (*models.Store, error) {
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// GetBySubdomain loads a store by its subdomain slug
func (s *StoreService) GetBySubdomain(subdomain string) (*models.Store, error) {
	store, err := s.storeRepo.GetBySubdomain(strings.ToLower(subdomain))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// List returns the caller's stores, newest first
func (s *StoreService) List(userID uuid.UUID, limit, offset int) ([]models.Store, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.storeRepo.GetByUserID(userID, limit, offset)
}

// Update applies the given changes to an owned store. The subdomain is
// immutable once a hosting project exists, since the project and its domain
// aliases are named after it.
func (s *StoreService) Update(ctx context.Context, store *models.Store, input UpdateStoreInput) (*models.Store, error) {
	if input.Subdomain != nil {
		newSubdomain := strings.ToLower(strings.TrimSpace(*input.Subdomain))
		if newSubdomain != store.Subdomain {
			if store.VercelProjectID != "" {
				return nil, apperrors.ErrSubdomainImmutable
			}
			if !subdomainRegex.MatchString(newSubdomain) {
				return nil, apperrors.NewValidationError("subdomain", "must be a lowercase slug of letters, digits and hyphens")
			}
			if _, err := s.storeRepo.GetBySubdomain(newSubdomain); err == nil {
				return nil, &apperrors.ConflictError{Message: fmt.Sprintf("subdomain %s is already taken", newSubdomain)}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			store.Subdomain = newSubdomain
		}
	}
	if input.TemplateKind != nil {
		if !input.TemplateKind.IsValid() {
			return nil, apperrors.NewValidationError("template_kind", fmt.Sprintf("unknown template kind %q", *input.TemplateKind))
		}
		store.TemplateKind = *input.TemplateKind
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	applyString(&store.Name, input.Name)
	applyString(&store.LogoURL, input.LogoURL)
	applyString(&store.BrandColor, input.BrandColor)
	applyString(&store.ThemePreset, input.ThemePreset)
	applyString(&store.Tagline, input.Tagline)
	applyString(&store.AboutText, input.AboutText)
	applyString(&store.ContactEmail, input.ContactEmail)
	applyString(&store.Currency, input.Currency)
	applyString(&store.ShippingCountries, input.ShippingCountries)
	applyBool(&store.ShippingEnabled, input.ShippingEnabled)
	applyBool(&store.TaxEnabled, input.TaxEnabled)
	applyBool(&store.BlogEnabled, input.BlogEnabled)
	applyBool(&store.LeadGenEnabled, input.LeadGenEnabled)
	if input.ShippingZones != nil {
		store.ShippingZones = input.ShippingZones
	}
	if input.SocialLinks != nil {
		store.SocialLinks = input.SocialLinks
	}
	if input.SEO != nil {
		store.SEO = input.SEO
	}

	if err := s.storeRepo.Update(store); err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}

	logger.WithContext(ctx).WithField("store_id", store.ID).Info("Store updated")
	return store, nil
}

// DeploymentLogs returns the store's audit trail, newest first
func (s *StoreService) DeploymentLogs(storeID uuid.UUID, limit, offset int) ([]models.DeploymentLog, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.logRepo.GetByStoreID(storeID, limit, offset)
}
