package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"core/internal/auth"
	"core/internal/model"
)

// CRMProvider is the service surface the CRM handlers need.
type CRMProvider interface {
	ListLeads(ctx context.Context, userID uuid.UUID, filters model.LeadFilters) ([]model.Lead, error)
	GetLead(ctx context.Context, userID, leadID uuid.UUID) (*model.Lead, error)
	CreateLead(ctx context.Context, userID uuid.UUID, req model.CreateLeadRequest) (*model.Lead, error)
	UpdateLead(ctx context.Context, userID, leadID uuid.UUID, req model.UpdateLeadRequest) (*model.Lead, error)
	DeleteLead(ctx context.Context, userID, leadID uuid.UUID) error

	ListSavedSearches(ctx context.Context, userID uuid.UUID) ([]model.SavedSearch, error)
	GetSavedSearch(ctx context.Context, userID, searchID uuid.UUID) (*model.SavedSearch, error)
	SaveSearch(ctx context.Context, userID uuid.UUID, req model.SaveSearchRequest) (*model.SavedSearch, error)
	UpdateSavedSearch(ctx context.Context, userID, searchID uuid.UUID, name string, rawFilters map[string]interface{}) (*model.SavedSearch, error)
	DeleteSavedSearch(ctx context.Context, userID, searchID uuid.UUID) error

	ListAlerts(ctx context.Context, userID uuid.UUID) ([]model.Alert, error)
	CreateAlert(ctx context.Context, userID uuid.UUID, req model.CreateAlertRequest) (*model.Alert, error)
	UpdateAlert(ctx context.Context, userID, alertID uuid.UUID, req model.UpdateAlertRequest) (*model.Alert, error)
	DeleteAlert(ctx context.Context, userID, alertID uuid.UUID) error
}

// CRMHandler handles the authenticated lead, saved-search and alert
// endpoints.
type CRMHandler struct {
	crm    CRMProvider
	logger *slog.Logger
}

// NewCRMHandler creates a new CRM handler.
func NewCRMHandler(crm CRMProvider, logger *slog.Logger) *CRMHandler {
	return &CRMHandler{
		crm:    crm,
		logger: logger.With("component", "crm_handler"),
	}
}

// currentUser extracts the authenticated user injected by the auth
// middleware. A missing user on a protected route is a wiring bug.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := auth.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
	return id, ok
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id must be a valid uuid"})
		return uuid.Nil, false
	}
	return id, true
}

// ListLeads handles GET /api/crm/leads
func (h *CRMHandler) ListLeads(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	filters := model.LeadFilters{
		Status: queryString(c, "status"),
		Tag:    queryString(c, "tag"),
	}

	leads, err := h.crm.ListLeads(c.Request.Context(), userID, filters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads, "count": len(leads)})
}

// GetLead handles GET /api/crm/leads/:id
func (h *CRMHandler) GetLead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	lead, err := h.crm.GetLead(c.Request.Context(), userID, leadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// CreateLead handles POST /api/crm/leads
func (h *CRMHandler) CreateLead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead payload: " + err.Error()})
		return
	}

	lead, err := h.crm.CreateLead(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// UpdateLead handles PUT /api/crm/leads/:id
func (h *CRMHandler) UpdateLead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead payload: " + err.Error()})
		return
	}

	lead, err := h.crm.UpdateLead(c.Request.Context(), userID, leadID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// DeleteLead handles DELETE /api/crm/leads/:id
func (h *CRMHandler) DeleteLead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.crm.DeleteLead(c.Request.Context(), userID, leadID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted"})
}

// ListAlerts handles GET /api/crm/alerts
func (h *CRMHandler) ListAlerts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	alerts, err := h.crm.ListAlerts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// CreateAlert handles POST /api/crm/alerts
func (h *CRMHandler) CreateAlert(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert payload: " + err.Error()})
		return
	}

	alert, err := h.crm.CreateAlert(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// UpdateAlert handles PUT /api/crm/alerts/:id
func (h *CRMHandler) UpdateAlert(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	alertID, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert payload: " + err.Error()})
		return
	}

	alert, err := h.crm.UpdateAlert(c.Request.Context(), userID, alertID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// DeleteAlert handles DELETE /api/crm/alerts/:id
func (h *CRMHandler) DeleteAlert(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	alertID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.crm.DeleteAlert(c.Request.Context(), userID, alertID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert deleted"})
}
