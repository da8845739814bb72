package repository

import (
	"fmt"
	"strings"

	"github.com/rsclarke/darkdork/internal/db"
	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/models"
)

// NewResult describes a hit returned by a search. Severity is optional.
type NewResult struct {
	SearchID int64
	URL      string
	Title    string
	Snippet  string
	Severity string
	Notes    string
	Metadata map[string]any
}

// AddResult stores a result under an existing search.
func (o *ops) AddResult(r NewResult) (int64, error) {
	if strings.TrimSpace(r.URL) == "" {
		return 0, fmt.Errorf("%w: result url is required", ErrInvalidInput)
	}
	severity := ""
	if r.Severity != "" {
		sev, err := models.ParseSeverity(r.Severity)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		severity = string(sev)
	}
	if err := o.requireSearch(r.SearchID); err != nil {
		return 0, err
	}

	id, err := db.CreateResult(o.q, models.Result{
		SearchID: r.SearchID,
		URL:      r.URL,
		Title:    r.Title,
		Snippet:  r.Snippet,
		FoundAt:  o.unixNow(),
		Severity: severity,
		Notes:    r.Notes,
		Metadata: r.Metadata,
	})
	if err != nil {
		return 0, err
	}

	o.logger.Debug("result added", logging.ResultID(id), logging.SearchID(r.SearchID))
	return id, nil
}

// GetResult returns nil when the result does not exist.
func (o *ops) GetResult(id int64) (*models.Result, error) {
	return db.GetResult(o.q, id)
}

// GetResults lists the results of a search, newest first.
func (o *ops) GetResults(searchID int64) ([]models.Result, error) {
	return db.GetResultsBySearch(o.q, searchID)
}

// VerifyResult sets the verified flag. Non-empty notes replace the existing
// notes. An unknown id is ignored.
func (o *ops) VerifyResult(id int64, verified bool, notes *string) error {
	if notes != nil && *notes == "" {
		notes = nil
	}
	n, err := db.SetResultVerified(o.q, id, verified, notes)
	if err != nil {
		return err
	}
	if n == 0 {
		o.logger.Debug("verify skipped, no such result", logging.ResultID(id))
	}
	return nil
}

func (o *ops) requireResult(id int64) error {
	r, err := db.GetResult(o.q, id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("%w: result %d", ErrNotFound, id)
	}
	return nil
}
