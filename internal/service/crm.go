package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"core/internal/model"
)

// CRMStore is the repository surface the CRM service needs.
type CRMStore interface {
	ListLeads(ctx context.Context, userID uuid.UUID, filters model.LeadFilters) ([]model.Lead, error)
	GetLead(ctx context.Context, userID, leadID uuid.UUID) (*model.Lead, error)
	CreateLead(ctx context.Context, userID uuid.UUID, req model.CreateLeadRequest) (*model.Lead, error)
	UpdateLead(ctx context.Context, userID, leadID uuid.UUID, req model.UpdateLeadRequest) (*model.Lead, error)
	DeleteLead(ctx context.Context, userID, leadID uuid.UUID) error

	ListSavedSearches(ctx context.Context, userID uuid.UUID) ([]model.SavedSearch, error)
	GetSavedSearch(ctx context.Context, userID, searchID uuid.UUID) (*model.SavedSearch, error)
	CreateSavedSearch(ctx context.Context, userID uuid.UUID, name, propertyType string, filters model.SearchFilters) (*model.SavedSearch, error)
	UpdateSavedSearch(ctx context.Context, userID, searchID uuid.UUID, name string, filters model.SearchFilters) (*model.SavedSearch, error)
	DeleteSavedSearch(ctx context.Context, userID, searchID uuid.UUID) error

	ListAlerts(ctx context.Context, userID uuid.UUID) ([]model.Alert, error)
	CreateAlert(ctx context.Context, userID, savedSearchID uuid.UUID, alertType, frequency string) (*model.Alert, error)
	UpdateAlert(ctx context.Context, userID, alertID uuid.UUID, req model.UpdateAlertRequest) (*model.Alert, error)
	DeleteAlert(ctx context.Context, userID, alertID uuid.UUID) error
}

// CRMService carries the business rules for leads, saved searches and
// alerts: closed value sets, name limits and filter-key stripping.
type CRMService struct {
	store  CRMStore
	logger *slog.Logger
}

// NewCRMService creates a new CRM service.
func NewCRMService(store CRMStore, logger *slog.Logger) *CRMService {
	return &CRMService{
		store:  store,
		logger: logger.With("component", "crm"),
	}
}

// ListLeads returns the user's leads with optional status/tag filters.
func (s *CRMService) ListLeads(ctx context.Context, userID uuid.UUID, filters model.LeadFilters) ([]model.Lead, error) {
	if filters.Status != nil && !model.LeadStatuses[*filters.Status] {
		return nil, model.NewValidationError("unknown lead status")
	}
	return s.store.ListLeads(ctx, userID, filters)
}

// GetLead returns one lead.
func (s *CRMService) GetLead(ctx context.Context, userID, leadID uuid.UUID) (*model.Lead, error) {
	return s.store.GetLead(ctx, userID, leadID)
}

// CreateLead stores a new lead.
func (s *CRMService) CreateLead(ctx context.Context, userID uuid.UUID, req model.CreateLeadRequest) (*model.Lead, error) {
	lead, err := s.store.CreateLead(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "lead created",
		slog.String("lead_id", lead.ID.String()),
		slog.String("user_id", userID.String()),
	)
	return lead, nil
}

// UpdateLead applies a partial update to a lead.
func (s *CRMService) UpdateLead(ctx context.Context, userID, leadID uuid.UUID, req model.UpdateLeadRequest) (*model.Lead, error) {
	if req.Status != nil && !model.LeadStatuses[*req.Status] {
		return nil, model.NewValidationError("status must be one of: new, contacted, qualified, converted, lost")
	}
	return s.store.UpdateLead(ctx, userID, leadID, req)
}

// DeleteLead removes a lead.
func (s *CRMService) DeleteLead(ctx context.Context, userID, leadID uuid.UUID) error {
	if err := s.store.DeleteLead(ctx, userID, leadID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "lead deleted",
		slog.String("lead_id", leadID.String()),
		slog.String("user_id", userID.String()),
	)
	return nil
}

// ListSavedSearches returns the user's saved searches.
func (s *CRMService) ListSavedSearches(ctx context.Context, userID uuid.UUID) ([]model.SavedSearch, error) {
	return s.store.ListSavedSearches(ctx, userID)
}

// GetSavedSearch returns one saved search.
func (s *CRMService) GetSavedSearch(ctx context.Context, userID, searchID uuid.UUID) (*model.SavedSearch, error) {
	return s.store.GetSavedSearch(ctx, userID, searchID)
}

// SaveSearch validates and stores a named filter configuration.
// Unknown filter keys are stripped rather than rejected.
func (s *CRMService) SaveSearch(ctx context.Context, userID uuid.UUID, req model.SaveSearchRequest) (*model.SavedSearch, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.NewValidationError("search name is required")
	}
	if len(name) > 100 {
		return nil, model.NewValidationError("search name must be 100 characters or less")
	}

	propertyType := strings.ToLower(strings.TrimSpace(req.PropertyType))
	if err := validateCategory(propertyType); err != nil {
		return nil, err
	}

	filters, err := decodeFilterMap(req.Filters)
	if err != nil {
		return nil, err
	}

	search, err := s.store.CreateSavedSearch(ctx, userID, name, propertyType, filters)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "search saved",
		slog.String("search_id", search.ID.String()),
		slog.String("user_id", userID.String()),
	)
	return search, nil
}

// UpdateSavedSearch replaces a saved search's name and filters.
func (s *CRMService) UpdateSavedSearch(ctx context.Context, userID, searchID uuid.UUID, name string, rawFilters map[string]interface{}) (*model.SavedSearch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("search name is required")
	}
	if len(name) > 100 {
		return nil, model.NewValidationError("search name must be 100 characters or less")
	}

	filters, err := decodeFilterMap(rawFilters)
	if err != nil {
		return nil, err
	}

	return s.store.UpdateSavedSearch(ctx, userID, searchID, name, filters)
}

// DeleteSavedSearch removes a saved search.
func (s *CRMService) DeleteSavedSearch(ctx context.Context, userID, searchID uuid.UUID) error {
	return s.store.DeleteSavedSearch(ctx, userID, searchID)
}

// ListAlerts returns the user's alerts.
func (s *CRMService) ListAlerts(ctx context.Context, userID uuid.UUID) ([]model.Alert, error) {
	return s.store.ListAlerts(ctx, userID)
}

// CreateAlert validates and stores a new alert; type and frequency
// default to email/daily.
func (s *CRMService) CreateAlert(ctx context.Context, userID uuid.UUID, req model.CreateAlertRequest) (*model.Alert, error) {
	savedSearchID, err := uuid.Parse(req.SavedSearchID)
	if err != nil {
		return nil, model.NewValidationError("savedSearchId must be a valid id")
	}

	alertType := req.AlertType
	if alertType == "" {
		alertType = "email"
	}
	if !model.AlertTypes[alertType] {
		return nil, model.NewValidationError("alertType must be 'email', 'sms', or 'both'")
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = "daily"
	}
	if !model.AlertFrequencies[frequency] {
		return nil, model.NewValidationError("frequency must be 'instant', 'daily', or 'weekly'")
	}

	// The saved search must exist and belong to the user.
	if _, err := s.store.GetSavedSearch(ctx, userID, savedSearchID); err != nil {
		return nil, err
	}

	alert, err := s.store.CreateAlert(ctx, userID, savedSearchID, alertType, frequency)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "alert created",
		slog.String("alert_id", alert.ID.String()),
		slog.String("user_id", userID.String()),
	)
	return alert, nil
}

// UpdateAlert applies a partial update to an alert.
func (s *CRMService) UpdateAlert(ctx context.Context, userID, alertID uuid.UUID, req model.UpdateAlertRequest) (*model.Alert, error) {
	if req.AlertType != nil && !model.AlertTypes[*req.AlertType] {
		return nil, model.NewValidationError("alertType must be 'email', 'sms', or 'both'")
	}
	if req.Frequency != nil && !model.AlertFrequencies[*req.Frequency] {
		return nil, model.NewValidationError("frequency must be 'instant', 'daily', or 'weekly'")
	}
	return s.store.UpdateAlert(ctx, userID, alertID, req)
}

// DeleteAlert removes an alert.
func (s *CRMService) DeleteAlert(ctx context.Context, userID, alertID uuid.UUID) error {
	return s.store.DeleteAlert(ctx, userID, alertID)
}

// decodeFilterMap narrows an arbitrary filter object to the known
// filter keys by round-tripping through the typed struct.
func decodeFilterMap(raw map[string]interface{}) (model.SearchFilters, error) {
	var filters model.SearchFilters
	if len(raw) == 0 {
		return filters, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return filters, fmt.Errorf("failed to encode filters: %w", err)
	}
	if err := json.Unmarshal(encoded, &filters); err != nil {
		return filters, model.NewValidationError("filters contain malformed values")
	}
	return filters, nil
}
