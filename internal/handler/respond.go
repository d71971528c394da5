// Package handler translates HTTP requests into service calls and
// service results into JSON responses.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"core/internal/model"
)

// respondError maps the error taxonomy onto HTTP statuses. Validation
// reasons are safe to echo; anything unexpected turns into a generic
// server error with the detail kept in the log.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Reason})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, model.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": "A search with this name already exists"})
	default:
		logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// Query parameter parsing. An absent parameter yields nil; a present
// but malformed one is a client error.

func queryFloat(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, model.NewValidationError(name + " must be a number")
	}
	return &v, nil
}

func queryInt(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, model.NewValidationError(name + " must be an integer")
	}
	return &v, nil
}

func queryString(c *gin.Context, name string) *string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	return &raw
}

func queryIntDefault(c *gin.Context, name string, def int) (int, error) {
	v, err := queryInt(c, name)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return def, nil
	}
	return *v, nil
}
