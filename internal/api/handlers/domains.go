package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gosovereign-backend/internal/database/models"
	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/service"
)

// DomainHandler handles the domain management endpoints called by deployed
// stores. Callers authenticate with the store's derived admin password, not
// a platform session.
type DomainHandler struct {
	stores  service.StoreServiceInterface
	domains service.DomainServiceInterface
}

// NewDomainHandler creates a new domain handler
func NewDomainHandler(stores service.StoreServiceInterface, domains service.DomainServiceInterface) *DomainHandler {
	return &DomainHandler{stores: stores, domains: domains}
}

// AddDomainRequest is the custom domain attachment body
type AddDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// authorize loads the store and checks the bearer credential. Responds on
// failure and returns nil.
func (h *DomainHandler) authorize(c *gin.Context) *models.Store {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID: invalid UUID format"})
		return nil
	}

	store, err := h.stores.Get(storeID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load store", "details": err.Error()})
		return nil
	}

	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || token == authHeader {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return nil
	}

	if err := h.domains.AuthorizeStoreAdmin(store, token); err != nil {
		if apperrors.IsAuthorization(err) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return nil
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return nil
	}

	return store
}

// GetDomains handles GET /api/v1/stores/:id/domains
// @Summary Get domain status
// @Description Get verification status for one domain or list all domains attached to the store
// @Tags domains
// @Accept json
// @Produce json
// @Param id path string true "Store ID (UUID)"
// @Param domain query string false "Domain to check"
// @Success 200 {object} map[string]interface{} "Domain status"
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Failure 404 {object} map[string]interface{} "Store or domain not found"
// @Failure 500 {object} map[string]interface{} "Provider failure"
// @Security BearerAuth
// @Router /stores/{id}/domains [get]
func (h *DomainHandler) GetDomains(c *gin.Context) {
	store := h.authorize(c)
	if store == nil {
		return
	}

	if domain := c.Query("domain"); domain != "" {
		result, err := h.domains.VerifyDomain(c.Request.Context(), store, domain)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	domains, err := h.domains.ListDomains(c.Request.Context(), store)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domains": domains})
}

// AddDomain handles POST /api/v1/stores/:id/domains
// @Summary Add a custom domain
// @Description Attach a custom domain to the store's hosting project
// @Tags domains
// @Accept json
// @Produce json
// @Param id path string true "Store ID (UUID)"
// @Param request body AddDomainRequest true "Domain to add"
// @Success 200 {object} map[string]interface{} "Domain attached"
// @Failure 400 {object} map[string]interface{} "Invalid domain name"
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Failure 409 {object} map[string]interface{} "Domain in use by another project"
// @Failure 500 {object} map[string]interface{} "Provider failure"
// @Security BearerAuth
// @Router /stores/{id}/domains [post]
func (h *DomainHandler) AddDomain(c *gin.Context) {
	store := h.authorize(c)
	if store == nil {
		return
	}

	var req AddDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.domains.AddCustomDomain(c.Request.Context(), store, req.Domain)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "domain": result})
}

// RemoveDomain handles DELETE /api/v1/stores/:id/domains
// @Summary Remove a custom domain
// @Description Detach the store's custom domain from its hosting project
// @Tags domains
// @Accept json
// @Produce json
// @Param id path string true "Store ID (UUID)"
// @Param domain query string true "Domain to remove"
// @Success 200 {object} map[string]interface{} "Domain removed"
// @Failure 400 {object} map[string]interface{} "Missing domain"
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Failure 404 {object} map[string]interface{} "Domain not found"
// @Failure 500 {object} map[string]interface{} "Provider failure"
// @Security BearerAuth
// @Router /stores/{id}/domains [delete]
func (h *DomainHandler) RemoveDomain(c *gin.Context) {
	store := h.authorize(c)
	if store == nil {
		return
	}

	domain := c.Query("domain")
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain is required"})
		return
	}

	if err := h.domains.RemoveCustomDomain(c.Request.Context(), store, domain); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *DomainHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidDomainName), apperrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Domain operation failed", "details": err.Error()})
	}
}
