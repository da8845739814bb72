package repository

import (
	"fmt"
	"time"

	"github.com/rsclarke/darkdork/internal/db"
	"github.com/rsclarke/darkdork/internal/events"
	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/models"
)

const topDorkLimit = 10

// AnalyticsSummary aggregates search activity over a trailing window.
type AnalyticsSummary struct {
	Days               int             `json:"days"`
	TotalSearches      int             `json:"total_searches"`
	SearchesByDay      []db.DayCount   `json:"searches_by_day"`
	TopDorks           []db.QueryCount `json:"top_dorks"`
	FindingsBySeverity map[string]int  `json:"findings_by_severity"`
}

// Statistics is a fixed snapshot of the store.
type Statistics struct {
	TotalProjects      int `json:"total_projects"`
	TotalSearches      int `json:"total_searches"`
	TotalResults       int `json:"total_results"`
	OpenFindings       int `json:"open_findings"`
	RemediatedFindings int `json:"remediated_findings"`
	SearchesLast7Days  int `json:"searches_last_7_days"`
}

// RecordAnalytics appends an event to the analytics log.
func (o *ops) RecordAnalytics(eventType events.Type, data events.Data) (int64, error) {
	if eventType == "" {
		return 0, fmt.Errorf("%w: event type is required", ErrInvalidInput)
	}
	id, err := db.CreateAnalyticsEvent(o.q, string(eventType), data, o.unixNow())
	if err != nil {
		return 0, err
	}
	o.logger.Debug("analytics recorded", logging.EventType(string(eventType)))
	return id, nil
}

// ListAnalytics returns the newest events, optionally of one type.
func (o *ops) ListAnalytics(eventType events.Type, limit int) ([]models.AnalyticsEvent, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return db.ListAnalyticsEvents(o.q, string(eventType), limit)
}

// GetAnalyticsSummary reports search activity from now minus days up to now,
// inclusive, together with the open findings per severity.
func (o *ops) GetAnalyticsSummary(days int) (*AnalyticsSummary, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", ErrInvalidInput)
	}
	since := o.now().Add(-time.Duration(days) * 24 * time.Hour).Unix()

	total, err := db.CountSearchesSince(o.q, since)
	if err != nil {
		return nil, err
	}
	byDay, err := db.SearchesPerDay(o.q, since)
	if err != nil {
		return nil, err
	}
	top, err := db.TopDorkQueries(o.q, since, topDorkLimit)
	if err != nil {
		return nil, err
	}
	bySeverity, err := db.OpenFindingsBySeverity(o.q)
	if err != nil {
		return nil, err
	}

	return &AnalyticsSummary{
		Days:               days,
		TotalSearches:      total,
		SearchesByDay:      byDay,
		TopDorks:           top,
		FindingsBySeverity: bySeverity,
	}, nil
}

// GetStatistics returns totals across the store plus searches in the last 7 days.
func (o *ops) GetStatistics() (*Statistics, error) {
	var stats Statistics
	var err error

	if stats.TotalProjects, err = db.CountRows(o.q, "projects"); err != nil {
		return nil, err
	}
	if stats.TotalSearches, err = db.CountRows(o.q, "searches"); err != nil {
		return nil, err
	}
	if stats.TotalResults, err = db.CountRows(o.q, "results"); err != nil {
		return nil, err
	}
	if stats.OpenFindings, err = db.CountFindingsByStatus(o.q, string(models.FindingOpen)); err != nil {
		return nil, err
	}
	if stats.RemediatedFindings, err = db.CountFindingsByStatus(o.q, string(models.FindingRemediated)); err != nil {
		return nil, err
	}
	since := o.now().Add(-7 * 24 * time.Hour).Unix()
	if stats.SearchesLast7Days, err = db.CountSearchesSince(o.q, since); err != nil {
		return nil, err
	}

	return &stats, nil
}
