package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rsclarke/darkdork/internal/models"
)

const findingColumns = "id, result_id, title, description, severity, cvss_score, status, reported_at, remediated_at, metadata"

// CreateFinding inserts an open finding and returns its ID.
func CreateFinding(q Querier, f models.Finding) (int64, error) {
	meta, err := encodeMap(f.Metadata)
	if err != nil {
		return 0, err
	}
	result, err := q.Exec(
		"INSERT INTO findings (result_id, title, description, severity, cvss_score, status, reported_at, metadata) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		f.ResultID, f.Title, f.Description, string(f.Severity), f.CVSSScore, string(models.FindingOpen), f.ReportedAt, meta,
	)
	if err != nil {
		return 0, fmt.Errorf("insert finding: %w", err)
	}
	return result.LastInsertId()
}

// GetFinding returns the finding with the given ID, or nil if there is none.
func GetFinding(q Querier, id int64) (*models.Finding, error) {
	row := q.QueryRow("SELECT "+findingColumns+" FROM findings WHERE id = ?", id)
	f, err := scanFinding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get finding: %w", err)
	}
	return f, nil
}

// ListFindings returns findings newest first. Empty filters match everything.
func ListFindings(q Querier, severity models.Severity, status models.FindingStatus) ([]models.Finding, error) {
	query := "SELECT " + findingColumns + " FROM findings WHERE 1=1"
	var args []any
	if severity != "" {
		query += " AND severity = ?"
		args = append(args, string(severity))
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY reported_at DESC, id DESC"

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	findings := []models.Finding{}
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		findings = append(findings, *f)
	}
	return findings, rows.Err()
}

// RemediateFinding marks a finding remediated at the given time. Calling it
// again re-stamps remediated_at.
func RemediateFinding(q Querier, id int64, remediatedAt int64) (int64, error) {
	result, err := q.Exec(
		"UPDATE findings SET status = ?, remediated_at = ? WHERE id = ?",
		string(models.FindingRemediated), remediatedAt, id,
	)
	if err != nil {
		return 0, fmt.Errorf("remediate finding: %w", err)
	}
	return result.RowsAffected()
}

func scanFinding(s rowScanner) (*models.Finding, error) {
	var f models.Finding
	var severity, status, meta string
	err := s.Scan(&f.ID, &f.ResultID, &f.Title, &f.Description, &severity, &f.CVSSScore, &status, &f.ReportedAt, &f.RemediatedAt, &meta)
	if err != nil {
		return nil, err
	}
	f.Severity = models.Severity(severity)
	f.Status = models.FindingStatus(status)
	if f.Metadata, err = decodeMap(meta); err != nil {
		return nil, err
	}
	return &f, nil
}
