package db

import (
	"fmt"

	"github.com/rsclarke/darkdork/internal/models"
)

// CreateExport appends an export audit record and returns its ID.
func CreateExport(q Querier, e models.ExportRecord) (int64, error) {
	result, err := q.Exec(
		"INSERT INTO exports (project_id, format, filename, exported_at, record_count) VALUES (?, ?, ?, ?, ?)",
		e.ProjectID, e.Format, e.Filename, e.ExportedAt, e.RecordCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert export: %w", err)
	}
	return result.LastInsertId()
}

// ListExports returns export records newest first. A nil projectID lists all.
func ListExports(q Querier, projectID *int64) ([]models.ExportRecord, error) {
	query := "SELECT id, project_id, format, filename, exported_at, record_count FROM exports"
	var args []any
	if projectID != nil {
		query += " WHERE project_id = ?"
		args = append(args, *projectID)
	}
	query += " ORDER BY exported_at DESC, id DESC"

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []models.ExportRecord{}
	for rows.Next() {
		var e models.ExportRecord
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Format, &e.Filename, &e.ExportedAt, &e.RecordCount); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		records = append(records, e)
	}
	return records, rows.Err()
}
