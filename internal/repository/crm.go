package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"core/internal/model"
)

// uniqueViolation is the PostgreSQL error code for unique constraints.
const uniqueViolation = "23505"

// CRMRepository handles the CRM database: leads, saved searches and
// search alerts. Every query is scoped to the owning user.
type CRMRepository struct {
	db *sqlx.DB
}

// NewCRMRepository creates a new CRM repository over PostgreSQL.
func NewCRMRepository(dsn string, maxConn, maxIdleConn int) (*CRMRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CRM database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping CRM database: %w", err)
	}

	return &CRMRepository{db: db}, nil
}

// Close closes the database connection.
func (r *CRMRepository) Close() error {
	return r.db.Close()
}

const leadColumns = `id, user_id, property_zpid, name, email, phone, message,
	status, assigned_to, tags, next_follow_up_date, notes, created_at, updated_at`

// ListLeads returns the user's leads, optionally narrowed by status or
// tag, most recently updated first.
func (r *CRMRepository) ListLeads(ctx context.Context, userID uuid.UUID, filters model.LeadFilters) ([]model.Lead, error) {
	query := fmt.Sprintf("SELECT %s FROM crm_leads WHERE user_id = $1", leadColumns)
	args := []interface{}{userID}

	if filters.Status != nil {
		args = append(args, *filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.Tag != nil {
		args = append(args, *filters.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	query += " ORDER BY updated_at DESC"

	leads := []model.Lead{}
	if err := r.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

// GetLead returns one lead owned by the user.
func (r *CRMRepository) GetLead(ctx context.Context, userID, leadID uuid.UUID) (*model.Lead, error) {
	query := fmt.Sprintf("SELECT %s FROM crm_leads WHERE id = $1 AND user_id = $2", leadColumns)

	var lead model.Lead
	if err := r.db.GetContext(ctx, &lead, query, leadID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

// CreateLead inserts a new lead and returns it with generated fields.
func (r *CRMRepository) CreateLead(ctx context.Context, userID uuid.UUID, req model.CreateLeadRequest) (*model.Lead, error) {
	query := fmt.Sprintf(`
		INSERT INTO crm_leads (user_id, property_zpid, name, email, phone, message, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, leadColumns)

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	var lead model.Lead
	err := r.db.GetContext(ctx, &lead, query,
		userID, req.PropertyZpid, req.Name, req.Email, req.Phone, req.Message, pq.Array(tags))
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return &lead, nil
}

// UpdateLead applies the present fields of req to the user's lead.
func (r *CRMRepository) UpdateLead(ctx context.Context, userID, leadID uuid.UUID, req model.UpdateLeadRequest) (*model.Lead, error) {
	var (
		updates []string
		args    []interface{}
	)

	if req.Status != nil {
		args = append(args, *req.Status)
		updates = append(updates, fmt.Sprintf("status = $%d", len(args)))
	}
	if req.Tags != nil {
		args = append(args, pq.Array(*req.Tags))
		updates = append(updates, fmt.Sprintf("tags = $%d", len(args)))
	}
	if req.Notes != nil {
		args = append(args, *req.Notes)
		updates = append(updates, fmt.Sprintf("notes = $%d", len(args)))
	}
	if req.NextFollowUpDate != nil {
		args = append(args, *req.NextFollowUpDate)
		updates = append(updates, fmt.Sprintf("next_follow_up_date = $%d", len(args)))
	}

	if len(updates) == 0 {
		return nil, model.NewValidationError("no fields to update")
	}
	updates = append(updates, "updated_at = NOW()")

	args = append(args, leadID, userID)
	query := fmt.Sprintf(`
		UPDATE crm_leads SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING %s`,
		strings.Join(updates, ", "), len(args)-1, len(args), leadColumns)

	var lead model.Lead
	if err := r.db.GetContext(ctx, &lead, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return &lead, nil
}

// DeleteLead removes the user's lead.
func (r *CRMRepository) DeleteLead(ctx context.Context, userID, leadID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM crm_leads WHERE id = $1 AND user_id = $2", leadID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// savedSearchRow carries the raw JSON filters column alongside the
// rest of the record.
type savedSearchRow struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	Name         string    `db:"name"`
	PropertyType string    `db:"property_type"`
	Filters      []byte    `db:"filters"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row savedSearchRow) toModel() (model.SavedSearch, error) {
	s := model.SavedSearch{
		ID:           row.ID,
		UserID:       row.UserID,
		Name:         row.Name,
		PropertyType: row.PropertyType,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if len(row.Filters) > 0 {
		if err := json.Unmarshal(row.Filters, &s.Filters); err != nil {
			return s, fmt.Errorf("failed to decode saved filters: %w", err)
		}
	}
	return s, nil
}

const savedSearchColumns = "id, user_id, name, property_type, filters, created_at, updated_at"

// ListSavedSearches returns the user's saved searches, most recently
// updated first.
func (r *CRMRepository) ListSavedSearches(ctx context.Context, userID uuid.UUID) ([]model.SavedSearch, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM user_saved_searches WHERE user_id = $1 ORDER BY updated_at DESC",
		savedSearchColumns)

	rows := []savedSearchRow{}
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}

	searches := make([]model.SavedSearch, 0, len(rows))
	for _, row := range rows {
		s, err := row.toModel()
		if err != nil {
			return nil, err
		}
		searches = append(searches, s)
	}
	return searches, nil
}

// GetSavedSearch returns one saved search owned by the user.
func (r *CRMRepository) GetSavedSearch(ctx context.Context, userID, searchID uuid.UUID) (*model.SavedSearch, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM user_saved_searches WHERE id = $1 AND user_id = $2",
		savedSearchColumns)

	var row savedSearchRow
	if err := r.db.GetContext(ctx, &row, query, searchID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get saved search: %w", err)
	}

	s, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSavedSearch stores a named filter configuration. A duplicate
// name for the same user yields ErrDuplicateName.
func (r *CRMRepository) CreateSavedSearch(ctx context.Context, userID uuid.UUID, name, propertyType string, filters model.SearchFilters) (*model.SavedSearch, error) {
	encoded, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filters: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO user_saved_searches (user_id, name, property_type, filters)
		VALUES ($1, $2, $3, $4::jsonb)
		RETURNING %s`, savedSearchColumns)

	var row savedSearchRow
	if err := r.db.GetContext(ctx, &row, query, userID, name, propertyType, encoded); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, model.ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to save search: %w", err)
	}

	s, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSavedSearch replaces the name and filters of an existing
// saved search.
func (r *CRMRepository) UpdateSavedSearch(ctx context.Context, userID, searchID uuid.UUID, name string, filters model.SearchFilters) (*model.SavedSearch, error) {
	encoded, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filters: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE user_saved_searches
		SET name = $1, filters = $2::jsonb, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING %s`, savedSearchColumns)

	var row savedSearchRow
	if err := r.db.GetContext(ctx, &row, query, name, encoded, searchID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, model.ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to update saved search: %w", err)
	}

	s, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSavedSearch removes the user's saved search.
func (r *CRMRepository) DeleteSavedSearch(ctx context.Context, userID, searchID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM user_saved_searches WHERE id = $1 AND user_id = $2", searchID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete saved search: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ListAlerts returns the user's alerts with the saved-search name
// joined in, newest first.
func (r *CRMRepository) ListAlerts(ctx context.Context, userID uuid.UUID) ([]model.Alert, error) {
	alerts := []model.Alert{}
	err := r.db.SelectContext(ctx, &alerts, `
		SELECT a.id, a.user_id, a.saved_search_id, a.alert_type, a.enabled,
		       a.frequency, a.last_sent_at, a.created_at, a.updated_at,
		       s.name AS search_name
		FROM search_alerts a
		LEFT JOIN user_saved_searches s ON a.saved_search_id = s.id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

const alertColumns = "id, user_id, saved_search_id, alert_type, enabled, frequency, last_sent_at, created_at, updated_at"

// CreateAlert attaches a notification setting to a saved search.
func (r *CRMRepository) CreateAlert(ctx context.Context, userID, savedSearchID uuid.UUID, alertType, frequency string) (*model.Alert, error) {
	query := fmt.Sprintf(`
		INSERT INTO search_alerts (user_id, saved_search_id, alert_type, frequency)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, alertColumns)

	var alert model.Alert
	if err := r.db.GetContext(ctx, &alert, query, userID, savedSearchID, alertType, frequency); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	return &alert, nil
}

// UpdateAlert applies the present fields of req to the user's alert.
func (r *CRMRepository) UpdateAlert(ctx context.Context, userID, alertID uuid.UUID, req model.UpdateAlertRequest) (*model.Alert, error) {
	var (
		updates []string
		args    []interface{}
	)

	if req.Enabled != nil {
		args = append(args, *req.Enabled)
		updates = append(updates, fmt.Sprintf("enabled = $%d", len(args)))
	}
	if req.AlertType != nil {
		args = append(args, *req.AlertType)
		updates = append(updates, fmt.Sprintf("alert_type = $%d", len(args)))
	}
	if req.Frequency != nil {
		args = append(args, *req.Frequency)
		updates = append(updates, fmt.Sprintf("frequency = $%d", len(args)))
	}

	if len(updates) == 0 {
		return nil, model.NewValidationError("no fields to update")
	}
	updates = append(updates, "updated_at = NOW()")

	args = append(args, alertID, userID)
	query := fmt.Sprintf(`
		UPDATE search_alerts SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING %s`,
		strings.Join(updates, ", "), len(args)-1, len(args), alertColumns)

	var alert model.Alert
	if err := r.db.GetContext(ctx, &alert, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}
	return &alert, nil
}

// DeleteAlert removes the user's alert.
func (r *CRMRepository) DeleteAlert(ctx context.Context, userID, alertID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM search_alerts WHERE id = $1 AND user_id = $2", alertID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
