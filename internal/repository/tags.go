package repository

import (
	"fmt"
	"strings"

	"github.com/rsclarke/darkdork/internal/db"
	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/models"
)

// CreateTag returns the id of the tag called name, creating it if needed.
func (o *ops) CreateTag(name string, color *string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: tag name is required", ErrInvalidInput)
	}
	return db.UpsertTag(o.q, name, color, o.unixNow())
}

// TagSearch attaches the named tag to a search. Tagging twice is a no-op.
func (o *ops) TagSearch(searchID int64, tagName string) error {
	if err := o.requireSearch(searchID); err != nil {
		return err
	}
	tagID, err := o.CreateTag(tagName, nil)
	if err != nil {
		return err
	}
	if err := db.LinkSearchTag(o.q, searchID, tagID); err != nil {
		return err
	}

	o.logger.Debug("search tagged", logging.SearchID(searchID), logging.Tag(tagName))
	return nil
}

// GetSearchTags returns the tag names of a search.
func (o *ops) GetSearchTags(searchID int64) ([]string, error) {
	return db.GetSearchTags(o.q, searchID)
}

// ListTags returns all tags.
func (o *ops) ListTags() ([]models.Tag, error) {
	return db.ListTags(o.q)
}
