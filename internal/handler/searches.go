package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"core/internal/model"
)

// Saved-search endpoints share the CRM handler since they live in the
// same store and auth scope.

// ListSavedSearches handles GET /api/searches
func (h *CRMHandler) ListSavedSearches(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	searches, err := h.crm.ListSavedSearches(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": searches, "count": len(searches)})
}

// GetSavedSearch handles GET /api/searches/:id
func (h *CRMHandler) GetSavedSearch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	searchID, ok := pathID(c)
	if !ok {
		return
	}

	search, err := h.crm.GetSavedSearch(c.Request.Context(), userID, searchID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, search)
}

// SaveSearch handles POST /api/searches
func (h *CRMHandler) SaveSearch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.SaveSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search payload: " + err.Error()})
		return
	}

	search, err := h.crm.SaveSearch(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, search)
}

// UpdateSavedSearch handles PUT /api/searches/:id
func (h *CRMHandler) UpdateSavedSearch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	searchID, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Name    string                 `json:"name" binding:"required"`
		Filters map[string]interface{} `json:"filters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search payload: " + err.Error()})
		return
	}

	search, err := h.crm.UpdateSavedSearch(c.Request.Context(), userID, searchID, req.Name, req.Filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, search)
}

// DeleteSavedSearch handles DELETE /api/searches/:id
func (h *CRMHandler) DeleteSavedSearch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	searchID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.crm.DeleteSavedSearch(c.Request.Context(), userID, searchID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Search deleted"})
}
