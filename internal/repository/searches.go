package repository

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rsclarke/darkdork/internal/db"
	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/models"
)

// DefaultSearchLimit caps ListSearches when no limit is given.
const DefaultSearchLimit = 100

// NewSearch describes an executed dork query.
type NewSearch struct {
	DorkQuery    string
	ProjectID    *int64
	TargetDomain string
	SearchURL    string
	UserNotes    string
}

// RecordSearch stores an executed search. A non-nil ProjectID must name an
// existing project.
func (o *ops) RecordSearch(s NewSearch) (int64, error) {
	if strings.TrimSpace(s.DorkQuery) == "" {
		return 0, fmt.Errorf("%w: dork query is required", ErrInvalidInput)
	}
	if s.ProjectID != nil {
		if err := o.requireProject(*s.ProjectID); err != nil {
			return 0, err
		}
	}

	id, err := db.CreateSearch(o.q, models.Search{
		ProjectID:    s.ProjectID,
		DorkQuery:    s.DorkQuery,
		TargetDomain: s.TargetDomain,
		SearchURL:    s.SearchURL,
		ExecutedAt:   o.unixNow(),
		Status:       "executed",
		UserNotes:    s.UserNotes,
	})
	if err != nil {
		return 0, err
	}

	fields := []zap.Field{logging.SearchID(id)}
	if s.ProjectID != nil {
		fields = append(fields, logging.ProjectID(*s.ProjectID))
	}
	o.logger.Debug("search recorded", fields...)
	return id, nil
}

// GetSearch returns nil when the search does not exist.
func (o *ops) GetSearch(id int64) (*models.Search, error) {
	return db.GetSearch(o.q, id)
}

// ListSearches returns the newest searches, optionally for one project.
// A limit of zero or less uses DefaultSearchLimit.
func (o *ops) ListSearches(projectID *int64, limit int) ([]models.Search, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return db.ListSearches(o.q, projectID, limit)
}

func (o *ops) requireSearch(id int64) error {
	s, err := db.GetSearch(o.q, id)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: search %d", ErrNotFound, id)
	}
	return nil
}
