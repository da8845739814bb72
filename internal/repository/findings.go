package repository

import (
	"fmt"
	"math"
	"strings"

	"github.com/rsclarke/darkdork/internal/db"
	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/models"
)

// NewFinding describes a verified vulnerability raised from a result.
type NewFinding struct {
	ResultID    int64
	Title       string
	Description string
	Severity    string
	CVSSScore   *float64
	Metadata    map[string]any
}

// FindingFilter narrows ListFindings. Empty fields match everything.
type FindingFilter struct {
	Severity string
	Status   string
}

// CreateFinding stores an open finding for an existing result.
func (o *ops) CreateFinding(f NewFinding) (int64, error) {
	if strings.TrimSpace(f.Title) == "" {
		return 0, fmt.Errorf("%w: finding title is required", ErrInvalidInput)
	}
	sev, err := models.ParseSeverity(f.Severity)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if f.CVSSScore != nil && (math.IsNaN(*f.CVSSScore) || *f.CVSSScore < 0 || *f.CVSSScore > 10) {
		return 0, fmt.Errorf("%w: cvss score %.1f outside 0-10", ErrInvalidInput, *f.CVSSScore)
	}
	if err := o.requireResult(f.ResultID); err != nil {
		return 0, err
	}

	id, err := db.CreateFinding(o.q, models.Finding{
		ResultID:    f.ResultID,
		Title:       f.Title,
		Description: f.Description,
		Severity:    sev,
		CVSSScore:   f.CVSSScore,
		ReportedAt:  o.unixNow(),
		Metadata:    f.Metadata,
	})
	if err != nil {
		return 0, err
	}

	o.logger.Debug("finding created", logging.FindingID(id), logging.ResultID(f.ResultID), logging.Severity(string(sev)))
	return id, nil
}

// GetFinding returns nil when the finding does not exist.
func (o *ops) GetFinding(id int64) (*models.Finding, error) {
	return db.GetFinding(o.q, id)
}

// ListFindings returns findings matching the filter, newest first.
func (o *ops) ListFindings(filter FindingFilter) ([]models.Finding, error) {
	var sev models.Severity
	if filter.Severity != "" {
		s, err := models.ParseSeverity(filter.Severity)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		sev = s
	}
	var status models.FindingStatus
	if filter.Status != "" {
		s, err := models.ParseFindingStatus(filter.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		status = s
	}
	return db.ListFindings(o.q, sev, status)
}

// RemediateFinding moves a finding to remediated and stamps remediated_at.
// Repeating the call keeps the status and re-stamps the time. An unknown id
// is ignored.
func (o *ops) RemediateFinding(id int64) error {
	n, err := db.RemediateFinding(o.q, id, o.unixNow())
	if err != nil {
		return err
	}
	if n == 0 {
		o.logger.Debug("remediate skipped, no such finding", logging.FindingID(id))
		return nil
	}
	o.logger.Debug("finding remediated", logging.FindingID(id))
	return nil
}
