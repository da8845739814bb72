package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rsclarke/darkdork/internal/models"
)

const searchColumns = "id, project_id, dork_query, target_domain, search_url, executed_at, status, user_notes"

// CreateSearch inserts an executed search and returns its ID.
func CreateSearch(q Querier, s models.Search) (int64, error) {
	if s.Status == "" {
		s.Status = "executed"
	}
	result, err := q.Exec(
		"INSERT INTO searches (project_id, dork_query, target_domain, search_url, executed_at, status, user_notes) VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.ProjectID, s.DorkQuery, s.TargetDomain, s.SearchURL, s.ExecutedAt, s.Status, s.UserNotes,
	)
	if err != nil {
		return 0, fmt.Errorf("insert search: %w", err)
	}
	return result.LastInsertId()
}

// GetSearch returns the search with the given ID, or nil if there is none.
func GetSearch(q Querier, id int64) (*models.Search, error) {
	row := q.QueryRow("SELECT "+searchColumns+" FROM searches WHERE id = ?", id)
	s, err := scanSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get search: %w", err)
	}
	return s, nil
}

// ListSearches returns up to limit searches, newest first. A nil projectID
// lists searches across all projects.
func ListSearches(q Querier, projectID *int64, limit int) ([]models.Search, error) {
	query := "SELECT " + searchColumns + " FROM searches"
	var args []any
	if projectID != nil {
		query += " WHERE project_id = ?"
		args = append(args, *projectID)
	}
	query += " ORDER BY executed_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	searches := []models.Search{}
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		searches = append(searches, *s)
	}
	return searches, rows.Err()
}

func scanSearch(s rowScanner) (*models.Search, error) {
	var out models.Search
	err := s.Scan(&out.ID, &out.ProjectID, &out.DorkQuery, &out.TargetDomain, &out.SearchURL, &out.ExecutedAt, &out.Status, &out.UserNotes)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
