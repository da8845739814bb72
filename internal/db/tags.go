package db

import (
	"fmt"

	"github.com/rsclarke/darkdork/internal/models"
)

// UpsertTag creates a tag if no tag with that name exists and returns the
// ID of the tag with that name either way. An existing tag keeps its color.
func UpsertTag(q Querier, name string, color *string, createdAt int64) (int64, error) {
	_, err := q.Exec(
		"INSERT INTO tags (name, color, created_at) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING",
		name, color, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert tag: %w", err)
	}

	var id int64
	if err := q.QueryRow("SELECT id FROM tags WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("get tag id: %w", err)
	}
	return id, nil
}

// LinkSearchTag attaches a tag to a search. Linking twice is a no-op.
func LinkSearchTag(q Querier, searchID, tagID int64) error {
	_, err := q.Exec(
		"INSERT INTO search_tags (search_id, tag_id) VALUES (?, ?) ON CONFLICT (search_id, tag_id) DO NOTHING",
		searchID, tagID,
	)
	if err != nil {
		return fmt.Errorf("link search tag: %w", err)
	}
	return nil
}

// GetSearchTags returns the names of the tags attached to a search, sorted by name.
func GetSearchTags(q Querier, searchID int64) ([]string, error) {
	rows, err := q.Query(`
		SELECT t.name FROM tags t
		JOIN search_tags st ON t.id = st.tag_id
		WHERE st.search_id = ?
		ORDER BY t.name
	`, searchID)
	if err != nil {
		return nil, fmt.Errorf("query search tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListTags returns every tag sorted by name.
func ListTags(q Querier) ([]models.Tag, error) {
	rows, err := q.Query("SELECT id, name, color, created_at FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
