package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gosovereign-backend/internal/auth"
	"gosovereign-backend/internal/database/models"
	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/service"
)

// StoreHandler handles HTTP requests for stores
type StoreHandler struct {
	service service.StoreServiceInterface
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(service service.StoreServiceInterface) *StoreHandler {
	return &StoreHandler{service: service}
}

// CreateStoreRequest is the setup wizard payload
type CreateStoreRequest struct {
	Name              string              `json:"name" binding:"required,min=1,max=100"`
	Subdomain         string              `json:"subdomain" binding:"required,min=1,max=63"`
	TemplateKind      models.TemplateKind `json:"template_kind" binding:"required"`
	LogoURL           string              `json:"logo_url"`
	BrandColor        string              `json:"brand_color"`
	ThemePreset       string              `json:"theme_preset"`
	Tagline           string              `json:"tagline"`
	AboutText         string              `json:"about_text"`
	ContactEmail      string              `json:"contact_email" binding:"omitempty,email"`
	Currency          string              `json:"currency" binding:"omitempty,len=3"`
	ShippingEnabled   bool                `json:"shipping_enabled"`
	TaxEnabled        bool                `json:"tax_enabled"`
	BlogEnabled       bool                `json:"blog_enabled"`
	LeadGenEnabled    bool                `json:"leadgen_enabled"`
	ShippingCountries string              `json:"shipping_countries"`
	ShippingZones     json.RawMessage     `json:"shipping_zones"`
	SocialLinks       json.RawMessage     `json:"social_links"`
	SEO               json.RawMessage     `json:"seo"`
}

// UpdateStoreRequest carries partial store updates; omitted fields are left
// untouched
type UpdateStoreRequest struct {
	Name              *string              `json:"name" binding:"omitempty,min=1,max=100"`
	Subdomain         *string              `json:"subdomain" binding:"omitempty,min=1,max=63"`
	TemplateKind      *models.TemplateKind `json:"template_kind"`
	LogoURL           *string              `json:"logo_url"`
	BrandColor        *string              `json:"brand_color"`
	ThemePreset       *string              `json:"theme_preset"`
	Tagline           *string              `json:"tagline"`
	AboutText         *string              `json:"about_text"`
	ContactEmail      *string              `json:"contact_email" binding:"omitempty,email"`
	Currency          *string              `json:"currency" binding:"omitempty,len=3"`
	ShippingEnabled   *bool                `json:"shipping_enabled"`
	TaxEnabled        *bool                `json:"tax_enabled"`
	BlogEnabled       *bool                `json:"blog_enabled"`
	LeadGenEnabled    *bool                `json:"leadgen_enabled"`
	ShippingCountries *string              `json:"shipping_countries"`
	ShippingZones     json.RawMessage      `json:"shipping_zones"`
	SocialLinks       json.RawMessage      `json:"social_links"`
	SEO               json.RawMessage      `json:"seo"`
}

// CreateStore handles POST /api/v1/stores
// @Summary Create a new store
// @Description Create a new store from the setup wizard payload
// @Tags stores
// @Accept json
// @Produce json
// @Param store body CreateStoreRequest true "Store data"
// @Success 201 {object} models.Store "Successfully created store"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 409 {object} map[string]interface{} "Subdomain already taken"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /stores [post]
func (h *StoreHandler) CreateStore(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	store := &models.Store{
		UserID:            userID,
		Name:              req.Name,
		Subdomain:         req.Subdomain,
		TemplateKind:      req.TemplateKind,
		LogoURL:           req.LogoURL,
		BrandColor:        req.BrandColor,
		ThemePreset:       req.ThemePreset,
		Tagline:           req.Tagline,
		AboutText:         req.AboutText,
		ContactEmail:      req.ContactEmail,
		Currency:          req.Currency,
		ShippingEnabled:   req.ShippingEnabled,
		TaxEnabled:        req.TaxEnabled,
		BlogEnabled:       req.BlogEnabled,
		LeadGenEnabled:    req.LeadGenEnabled,
		ShippingCountries: req.ShippingCountries,
		ShippingZones:     req.ShippingZones,
		SocialLinks:       req.SocialLinks,
		SEO:               req.SEO,
	}

	if err := h.service.Create(c.Request.Context(), store); err != nil {
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsConflict(err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, store)
}

// GetStore handles GET /api/v1/stores/:id
// @Summary Get store by ID
// @Description Get one of the caller's stores by its UUID
// @Tags stores
// @Accept json
// @Produce json
// @Param id path string true "Store ID (UUID)"
// @Success 200 {object} models.Store "Successfully retrieved store"
// @Failure 400 {object} map[string]interface{} "Invalid store ID"
// @Failure 403 {object} map[string]interface{} "Not the store owner"
// @Failure 404 {object} map[string]interface{} "Store not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /stores/{id} [get]
func (h *StoreHandler) GetStore(c *gin.Context) {
	store := h.loadOwnedStore(c)
	if store == nil {
		return
	}
	c.JSON(http.StatusOK, store)
}

// ListStores handles GET /api/v1/stores
// @Summary List the caller's stores
// @Description List the caller's stores, newest first, with pagination
// @Tags stores
// @Accept json
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]interface{} "Stores with total count"
// @Failure 401 {object} map[string]interface{} "Unauthenticated"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /stores [get]
func (h *StoreHandler) ListStores(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	stores, total, err := h.service.List(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stores", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// UpdateStore handles PUT /api/v1/stores/:id
// @Summary Update a store
// @Description Update a store's wizard configuration; the subdomain is immutable once deployed
// @Tags stores
// @Accept json
// @Produce json
// @Param id path string true "Store ID (UUID)"
// @Param store body UpdateStoreRequest true "Fields to update"
// @Success 200 {object} models.Store "Successfully updated store"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 403 {object} map[string]interface{} "Not the store owner"
// @Failure 404 {object} map[string]interface{} "Store not found"
// @Failure 409 {object} map[string]interface{} "Subdomain conflict or immutable"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /stores/{id} [put]
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	store := h.loadOwnedStore(c)
	if store == nil {
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), store, service.UpdateStoreInput{
		Name:              req.Name,
		Subdomain:         req.Subdomain,
		TemplateKind:      req.TemplateKind,
		LogoURL:           req.LogoURL,
		BrandColor:        req.BrandColor,
		ThemePreset:       req.ThemePreset,
		Tagline:           req.Tagline,
		AboutText:         req.AboutText,
		ContactEmail:      req.ContactEmail,
		Currency:          req.Currency,
		ShippingEnabled:   req.ShippingEnabled,
		TaxEnabled:        req.TaxEnabled,
		BlogEnabled:       req.BlogEnabled,
		LeadGenEnabled:    req.LeadGenEnabled,
		ShippingCountries: req.ShippingCountries,
		ShippingZones:     req.ShippingZones,
		SocialLinks:       req.SocialLinks,
		SEO:               req.SEO,
	})
	if err != nil {
		switch {
		case apperrors.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrSubdomainImmutable), apperrors.IsConflict(err):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update store", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// GetDeploymentLogs handles GET /api/v1/stores/:id/deployment-logs
// @Summary Get a store's deployment audit trail
// @Description List the store's deployment log entries, newest first
// @Tags stores
// @Accept json
// @Produce json
// @Param id path string true "Store ID (UUID)"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]interface{} "Deployment logs with total count"
// @Failure 403 {object} map[string]interface{} "Not the store owner"
// @Failure 404 {object} map[string]interface{} "Store not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /stores/{id}/deployment-logs [get]
func (h *StoreHandler) GetDeploymentLogs(c *gin.Context) {
	store := h.loadOwnedStore(c)
	if store == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, total, err := h.service.DeploymentLogs(store.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get deployment logs", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":   logs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// loadOwnedStore parses the id param and loads the store with the ownership
// check applied. Responds on failure and returns nil.
func (h *StoreHandler) loadOwnedStore(c *gin.Context) *models.Store {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID: invalid UUID format"})
		return nil
	}

	store, err := h.service.GetForUser(id, userID, auth.IsAdmin(c))
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return nil
		}
		if apperrors.IsAuthorization(err) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get store", "details": err.Error()})
		return nil
	}
	return store
}
