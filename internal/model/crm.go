package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Lead statuses form a closed set; updates outside it are rejected.
var LeadStatuses = map[string]bool{
	"new":       true,
	"contacted": true,
	"qualified": true,
	"converted": true,
	"lost":      true,
}

// Lead is one CRM lead record, scoped to the user that owns it.
type Lead struct {
	ID               uuid.UUID      `json:"id" db:"id"`
	UserID           uuid.UUID      `json:"-" db:"user_id"`
	PropertyZpid     string         `json:"propertyZpid" db:"property_zpid"`
	Name             string         `json:"name" db:"name"`
	Email            string         `json:"email" db:"email"`
	Phone            *string        `json:"phone" db:"phone"`
	Message          *string        `json:"message" db:"message"`
	Status           string         `json:"status" db:"status"`
	AssignedTo       *uuid.UUID     `json:"assignedTo" db:"assigned_to"`
	Tags             pq.StringArray `json:"tags" db:"tags"`
	NextFollowUpDate *time.Time     `json:"nextFollowUpDate" db:"next_follow_up_date"`
	Notes            *string        `json:"notes" db:"notes"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time      `json:"updatedAt" db:"updated_at"`
}

// CreateLeadRequest is the body for POST /api/crm/leads.
type CreateLeadRequest struct {
	PropertyZpid string   `json:"propertyZpid" binding:"required"`
	Name         string   `json:"name" binding:"required"`
	Email        string   `json:"email" binding:"required,email"`
	Phone        *string  `json:"phone"`
	Message      *string  `json:"message"`
	Tags         []string `json:"tags"`
}

// UpdateLeadRequest is the body for PUT /api/crm/leads/:id. All fields
// are optional; only present ones are written.
type UpdateLeadRequest struct {
	Status           *string   `json:"status"`
	Tags             *[]string `json:"tags"`
	Notes            *string   `json:"notes"`
	NextFollowUpDate *string   `json:"nextFollowUpDate"`
}

// LeadFilters narrow the lead list.
type LeadFilters struct {
	Status *string
	Tag    *string
}

// SavedSearch is a named filter configuration a user can recall.
type SavedSearch struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	UserID       uuid.UUID     `json:"-" db:"user_id"`
	Name         string        `json:"name" db:"name"`
	PropertyType string        `json:"propertyType" db:"property_type"`
	Filters      SearchFilters `json:"filters" db:"-"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
}

// SaveSearchRequest is the body for POST /api/searches.
type SaveSearchRequest struct {
	Name         string                 `json:"name" binding:"required"`
	PropertyType string                 `json:"propertyType" binding:"required"`
	Filters      map[string]interface{} `json:"filters"`
}

// Alert types and frequencies are closed sets.
var (
	AlertTypes       = map[string]bool{"email": true, "sms": true, "both": true}
	AlertFrequencies = map[string]bool{"instant": true, "daily": true, "weekly": true}
)

// Alert is a notification setting attached to a saved search.
type Alert struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"-" db:"user_id"`
	SavedSearchID uuid.UUID  `json:"savedSearchId" db:"saved_search_id"`
	AlertType     string     `json:"alertType" db:"alert_type"`
	Enabled       bool       `json:"enabled" db:"enabled"`
	Frequency     string     `json:"frequency" db:"frequency"`
	LastSentAt    *time.Time `json:"lastSentAt" db:"last_sent_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
	SearchName    *string    `json:"searchName" db:"search_name"`
}

// CreateAlertRequest is the body for POST /api/crm/alerts.
type CreateAlertRequest struct {
	SavedSearchID string `json:"savedSearchId" binding:"required"`
	AlertType     string `json:"alertType"`
	Frequency     string `json:"frequency"`
}

// UpdateAlertRequest is the body for PUT /api/crm/alerts/:id.
type UpdateAlertRequest struct {
	Enabled   *bool   `json:"enabled"`
	AlertType *string `json:"alertType"`
	Frequency *string `json:"frequency"`
}
