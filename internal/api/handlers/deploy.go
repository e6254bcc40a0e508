package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gosovereign-backend/internal/auth"
	apperrors "gosovereign-backend/internal/errors"
	"gosovereign-backend/internal/service"
)

// DeployHandler handles deployment trigger and status endpoints
type DeployHandler struct {
	service service.DeployServiceInterface
}

// NewDeployHandler creates a new deploy handler
func NewDeployHandler(service service.DeployServiceInterface) *DeployHandler {
	return &DeployHandler{service: service}
}

// DeployRequest is the deployment trigger body. store_id is optional; when
// omitted the caller's most recently created store is deployed.
type DeployRequest struct {
	StoreID *uuid.UUID `json:"store_id"`
}

// Deploy handles POST /api/v1/deploy
// @Summary Deploy a store
// @Description Trigger a deployment of the caller's store to the hosting provider
// @Tags deploy
// @Accept json
// @Produce json
// @Param request body DeployRequest false "Deploy request"
// @Success 200 {object} service.DeployResult "Deployment triggered or already live"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Failure 401 {object} map[string]interface{} "Unauthenticated"
// @Failure 403 {object} map[string]interface{} "Not owner or deployment not allowed"
// @Failure 404 {object} map[string]interface{} "Store not found"
// @Failure 500 {object} map[string]interface{} "Pipeline failure"
// @Security BearerAuth
// @Router /deploy [post]
func (h *DeployHandler) Deploy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	// The body is optional: older clients post an empty body
	var req DeployRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	result, err := h.service.Deploy(c.Request.Context(), userID, req.StoreID)
	if err != nil {
		if dna, ok := apperrors.AsDeployNotAllowed(err); ok {
			c.JSON(http.StatusForbidden, gin.H{
				"reason":              dna.Reason,
				"subscription_status": dna.SubscriptionStatus,
			})
			return
		}
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsAuthorization(err) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Status handles GET /api/v1/deploy/status
// @Summary Poll deployment status
// @Description Get the current state of an in-flight deployment
// @Tags deploy
// @Accept json
// @Produce json
// @Param deployment_id query string true "Deployment ID"
// @Param wait query bool false "Block until the deployment is terminal or the polling budget runs out"
// @Success 200 {object} service.StatusResult "Current deployment state"
// @Failure 400 {object} map[string]interface{} "Missing deployment_id"
// @Failure 401 {object} map[string]interface{} "Unauthenticated"
// @Failure 403 {object} map[string]interface{} "Not owner"
// @Failure 404 {object} map[string]interface{} "Deployment not found"
// @Failure 500 {object} map[string]interface{} "Provider failure"
// @Security BearerAuth
// @Router /deploy/status [get]
func (h *DeployHandler) Status(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	deploymentID := c.Query("deployment_id")
	if deploymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deployment_id is required"})
		return
	}

	wait := c.Query("wait") == "true"
	result, err := h.service.DeploymentStatus(c.Request.Context(), userID, auth.IsAdmin(c), deploymentID, wait)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsAuthorization(err) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get deployment status", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
