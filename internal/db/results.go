package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rsclarke/darkdork/internal/models"
)

const resultColumns = "id, search_id, url, title, snippet, found_at, verified, severity, notes, metadata"

// CreateResult inserts a search result and returns its ID.
func CreateResult(q Querier, r models.Result) (int64, error) {
	meta, err := encodeMap(r.Metadata)
	if err != nil {
		return 0, err
	}
	result, err := q.Exec(
		"INSERT INTO results (search_id, url, title, snippet, found_at, verified, severity, notes, metadata) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.SearchID, r.URL, r.Title, r.Snippet, r.FoundAt, boolToInt(r.Verified), r.Severity, r.Notes, meta,
	)
	if err != nil {
		return 0, fmt.Errorf("insert result: %w", err)
	}
	return result.LastInsertId()
}

// GetResult returns the result with the given ID, or nil if there is none.
func GetResult(q Querier, id int64) (*models.Result, error) {
	row := q.QueryRow("SELECT "+resultColumns+" FROM results WHERE id = ?", id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	return r, nil
}

// GetResultsBySearch returns all results of a search, newest first.
func GetResultsBySearch(q Querier, searchID int64) ([]models.Result, error) {
	rows, err := q.Query(
		"SELECT "+resultColumns+" FROM results WHERE search_id = ? ORDER BY found_at DESC, id DESC",
		searchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []models.Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, *r)
	}
	return results, rows.Err()
}

// SetResultVerified sets the verification flag. When notes is non-nil the
// notes column is replaced with it.
func SetResultVerified(q Querier, id int64, verified bool, notes *string) (int64, error) {
	var (
		result sql.Result
		err    error
	)
	if notes != nil {
		result, err = q.Exec("UPDATE results SET verified = ?, notes = ? WHERE id = ?", boolToInt(verified), *notes, id)
	} else {
		result, err = q.Exec("UPDATE results SET verified = ? WHERE id = ?", boolToInt(verified), id)
	}
	if err != nil {
		return 0, fmt.Errorf("verify result: %w", err)
	}
	return result.RowsAffected()
}

func scanResult(s rowScanner) (*models.Result, error) {
	var r models.Result
	var verified int
	var meta string
	err := s.Scan(&r.ID, &r.SearchID, &r.URL, &r.Title, &r.Snippet, &r.FoundAt, &verified, &r.Severity, &r.Notes, &meta)
	if err != nil {
		return nil, err
	}
	r.Verified = verified != 0
	if r.Metadata, err = decodeMap(meta); err != nil {
		return nil, err
	}
	return &r, nil
}
