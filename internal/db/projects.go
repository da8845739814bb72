package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rsclarke/darkdork/internal/models"
)

const projectColumns = "id, name, description, target_domain, status, created_at, updated_at, metadata"

// CreateProject inserts a project and returns its ID.
func CreateProject(q Querier, p models.Project) (int64, error) {
	meta, err := encodeMap(p.Metadata)
	if err != nil {
		return 0, err
	}
	if p.Status == "" {
		p.Status = "active"
	}
	result, err := q.Exec(
		"INSERT INTO projects (name, description, target_domain, status, created_at, updated_at, metadata) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.Name, p.Description, p.TargetDomain, p.Status, p.CreatedAt, p.UpdatedAt, meta,
	)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	return result.LastInsertId()
}

// GetProject returns the project with the given ID, or nil if there is none.
func GetProject(q Querier, id int64) (*models.Project, error) {
	row := q.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// ListProjects returns projects in creation order, optionally filtered by status.
func ListProjects(q Querier, status string) ([]models.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id"

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// ProjectUpdate holds the mutable project columns. Nil fields are left unchanged.
type ProjectUpdate struct {
	Name         *string
	Description  *string
	TargetDomain *string
	Status       *string
	Metadata     map[string]any
}

// Empty reports whether the update changes nothing.
func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.TargetDomain == nil && u.Status == nil && u.Metadata == nil
}

// UpdateProject applies u to the project and stamps updated_at.
// It returns the number of rows changed.
func UpdateProject(q Querier, id int64, u ProjectUpdate, updatedAt int64) (int64, error) {
	if u.Empty() {
		return 0, nil
	}

	var sets []string
	var args []any
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.TargetDomain != nil {
		sets = append(sets, "target_domain = ?")
		args = append(args, *u.TargetDomain)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if u.Metadata != nil {
		meta, err := encodeMap(u.Metadata)
		if err != nil {
			return 0, err
		}
		sets = append(sets, "metadata = ?")
		args = append(args, meta)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, updatedAt, id)

	result, err := q.Exec("UPDATE projects SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return 0, fmt.Errorf("update project: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner) (*models.Project, error) {
	var p models.Project
	var meta string
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.TargetDomain, &p.Status, &p.CreatedAt, &p.UpdatedAt, &meta); err != nil {
		return nil, err
	}
	m, err := decodeMap(meta)
	if err != nil {
		return nil, err
	}
	p.Metadata = m
	return &p, nil
}
