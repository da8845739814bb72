package db

import (
	"fmt"

	"github.com/rsclarke/darkdork/internal/models"
)

// CreateAnalyticsEvent appends an event to the analytics log.
func CreateAnalyticsEvent(q Querier, eventType string, data map[string]any, recordedAt int64) (int64, error) {
	encoded, err := encodeMap(data)
	if err != nil {
		return 0, err
	}
	result, err := q.Exec(
		"INSERT INTO analytics (event_type, event_data, recorded_at) VALUES (?, ?, ?)",
		eventType, encoded, recordedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert analytics event: %w", err)
	}
	return result.LastInsertId()
}

// ListAnalyticsEvents returns up to limit events, newest first, optionally
// restricted to one event type.
func ListAnalyticsEvents(q Querier, eventType string, limit int) ([]models.AnalyticsEvent, error) {
	query := "SELECT id, event_type, event_data, recorded_at FROM analytics"
	var args []any
	if eventType != "" {
		query += " WHERE event_type = ?"
		args = append(args, eventType)
	}
	query += " ORDER BY recorded_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list analytics events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	evts := []models.AnalyticsEvent{}
	for rows.Next() {
		var e models.AnalyticsEvent
		var data string
		if err := rows.Scan(&e.ID, &e.EventType, &data, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan analytics event: %w", err)
		}
		if e.EventData, err = decodeMap(data); err != nil {
			return nil, err
		}
		evts = append(evts, e)
	}
	return evts, rows.Err()
}
