// Package repository is the facade over the relational store: projects,
// searches, results, findings, tags, analytics and export history.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rsclarke/darkdork/internal/db"
	"github.com/rsclarke/darkdork/internal/logging"
)

var (
	// ErrNotFound is returned when a referenced parent row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when required fields are missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the time source used for every stored timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// Repository runs each mutating call in its own implicit transaction.
// Use WithTx to group related writes.
type Repository struct {
	ops
	db *sql.DB
}

// New wraps an open database handle.
func New(database *sql.DB, logger *zap.Logger, opts ...Option) *Repository {
	r := &Repository{
		ops: ops{
			q:      database,
			now:    time.Now,
			logger: logging.OrNop(logger).Named("repository"),
		},
		db: database,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open opens (and migrates) the SQLite database at path.
func Open(path string, logger *zap.Logger, opts ...Option) (*Repository, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	return New(database, logger, opts...), nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Tx exposes the repository operations bound to one transaction.
type Tx struct {
	ops
}

// WithTx runs fn in a single transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (r *Repository) WithTx(fn func(tx *Tx) error) error {
	sqlTx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	tx := &Tx{ops: ops{q: sqlTx, now: r.now, logger: r.logger}}
	if err := fn(tx); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TagSearch attaches a tag to a search, creating the tag if needed. Both
// steps commit together.
func (r *Repository) TagSearch(searchID int64, tagName string) error {
	return r.WithTx(func(tx *Tx) error {
		return tx.TagSearch(searchID, tagName)
	})
}

// ops holds the operations shared by Repository and Tx.
type ops struct {
	q      db.Querier
	now    func() time.Time
	logger *zap.Logger
}

func (o *ops) unixNow() int64 {
	return o.now().Unix()
}
