package repository

import (
	"fmt"
	"strings"

	"github.com/rsclarke/darkdork/internal/db"
	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/models"
)

// NewExport describes an export produced by an external renderer.
type NewExport struct {
	ProjectID   *int64
	Format      string
	Filename    string
	RecordCount int
}

// RecordExport appends an export to the audit trail.
func (o *ops) RecordExport(e NewExport) (int64, error) {
	if strings.TrimSpace(e.Format) == "" || strings.TrimSpace(e.Filename) == "" {
		return 0, fmt.Errorf("%w: export format and filename are required", ErrInvalidInput)
	}
	if e.RecordCount < 0 {
		return 0, fmt.Errorf("%w: record count must not be negative", ErrInvalidInput)
	}
	if e.ProjectID != nil {
		if err := o.requireProject(*e.ProjectID); err != nil {
			return 0, err
		}
	}

	id, err := db.CreateExport(o.q, models.ExportRecord{
		ProjectID:   e.ProjectID,
		Format:      strings.ToLower(e.Format),
		Filename:    e.Filename,
		ExportedAt:  o.unixNow(),
		RecordCount: e.RecordCount,
	})
	if err != nil {
		return 0, err
	}

	o.logger.Debug("export recorded", logging.Path(e.Filename), logging.Count(e.RecordCount))
	return id, nil
}

// ListExports returns the export history, optionally for one project.
func (o *ops) ListExports(projectID *int64) ([]models.ExportRecord, error) {
	return db.ListExports(o.q, projectID)
}
