package repository

import (
	"fmt"
	"strings"

	"github.com/rsclarke/darkdork/internal/db"
	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/models"
)

// NewProject holds the fields needed to create a project.
type NewProject struct {
	Name         string
	Description  string
	TargetDomain string
	Metadata     map[string]any
}

// ProjectPatch lists the project fields that may change. Nil fields are kept.
type ProjectPatch struct {
	Name         *string
	Description  *string
	TargetDomain *string
	Status       *string
	Metadata     map[string]any
}

// CreateProject stores a new active project.
func (o *ops) CreateProject(p NewProject) (int64, error) {
	if strings.TrimSpace(p.Name) == "" {
		return 0, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}

	now := o.unixNow()
	id, err := db.CreateProject(o.q, models.Project{
		Name:         p.Name,
		Description:  p.Description,
		TargetDomain: p.TargetDomain,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
		Metadata:     p.Metadata,
	})
	if err != nil {
		return 0, err
	}

	o.logger.Debug("project created", logging.ProjectID(id))
	return id, nil
}

// GetProject returns nil when the project does not exist.
func (o *ops) GetProject(id int64) (*models.Project, error) {
	return db.GetProject(o.q, id)
}

// ListProjects lists all projects, or only those with the given status.
func (o *ops) ListProjects(status string) ([]models.Project, error) {
	return db.ListProjects(o.q, status)
}

// UpdateProject applies the patch. An empty patch or unknown id changes nothing.
func (o *ops) UpdateProject(id int64, patch ProjectPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return fmt.Errorf("%w: project name cannot be empty", ErrInvalidInput)
	}

	n, err := db.UpdateProject(o.q, id, db.ProjectUpdate{
		Name:         patch.Name,
		Description:  patch.Description,
		TargetDomain: patch.TargetDomain,
		Status:       patch.Status,
		Metadata:     patch.Metadata,
	}, o.unixNow())
	if err != nil {
		return err
	}

	o.logger.Debug("project updated", logging.ProjectID(id), logging.Count(int(n)))
	return nil
}

func (o *ops) requireProject(id int64) error {
	p, err := db.GetProject(o.q, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: project %d", ErrNotFound, id)
	}
	return nil
}
