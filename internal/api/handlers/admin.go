package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/service"
)

// AdminHandler handles platform admin endpoints
type AdminHandler struct {
	service service.DeployServiceInterface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service service.DeployServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// RedeployRequest selects either one store or every deployed store
type RedeployRequest struct {
	StoreID *uuid.UUID `json:"storeId"`
	All     bool       `json:"all"`
}

// Redeploy handles POST /api/v1/admin/redeploy
// @Summary Redeploy stores
// @Description Redeploy a single store or every deployed store, bypassing the billing gate
// @Tags admin
// @Accept json
// @Produce json
// @Param request body RedeployRequest true "Redeploy request"
// @Success 200 {object} service.BulkRedeploySummary "Bulk redeploy summary"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 403 {object} map[string]interface{} "Not a platform admin"
// @Failure 404 {object} map[string]interface{} "Store not found"
// @Failure 500 {object} map[string]interface{} "Redeploy failure"
// @Security BearerAuth
// @Router /admin/redeploy [post]
func (h *AdminHandler) Redeploy(c *gin.Context) {
	var req RedeployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.All {
		summary, err := h.service.BulkRedeploy(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Bulk redeploy failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, summary)
		return
	}

	if req.StoreID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "storeId or all is required"})
		return
	}

	result, err := h.service.AdminRedeploy(c.Request.Context(), *req.StoreID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
