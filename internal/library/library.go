// Package library manages the catalog of reusable search-query templates
// ("dorks"). The catalog lives in a single JSON or YAML document that is
// rewritten on every mutation.
package library

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/models"
)

// ErrEmptyQuery is returned when a dork has no query template.
var ErrEmptyQuery = errors.New("dork query must not be empty")

// Dork is a reusable search-query template.
type Dork struct {
	ID          int             `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Query       string          `json:"query" yaml:"query"`
	Category    string          `json:"category" yaml:"category"`
	Description string          `json:"description" yaml:"description"`
	Severity    models.Severity `json:"severity" yaml:"severity"`
	Tags        []string        `json:"tags" yaml:"tags"`
	Created     time.Time       `json:"created" yaml:"created"`
	UsageCount  int             `json:"usage_count" yaml:"usage_count"`
	LastUsed    *time.Time      `json:"last_used" yaml:"last_used"`
	Metadata    map[string]any  `json:"metadata" yaml:"metadata"`
}

func (d Dork) clone() Dork {
	d.Tags = slices.Clone(d.Tags)
	d.Metadata = maps.Clone(d.Metadata)
	if d.LastUsed != nil {
		t := *d.LastUsed
		d.LastUsed = &t
	}
	return d
}

// NewDork holds the caller-supplied fields of a dork. An empty severity means Info.
type NewDork struct {
	Query       string
	Name        string
	Category    string
	Description string
	Severity    string
	Tags        []string
	Metadata    map[string]any
}

// Filter narrows Search. Zero-valued fields do not filter.
type Filter struct {
	// Query is matched case-insensitively against name, query and description.
	Query    string
	Category string
	// Tags matches dorks carrying any of the listed tags.
	Tags     []string
	Severity models.Severity
}

// Stats summarises the catalog.
type Stats struct {
	TotalDorks        int            `json:"total_dorks"`
	Categories        int            `json:"categories"`
	Tags              int            `json:"tags"`
	AverageUsage      float64        `json:"average_usage"`
	SeverityBreakdown map[string]int `json:"severity_breakdown"`
	MostPopular       []Dork         `json:"most_popular"`
}

// Option configures a Library.
type Option func(*Library)

// WithClock overrides the time source used for created and last_used stamps.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		l.now = now
	}
}

// Library is the dork catalog. It is safe for concurrent use.
type Library struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu         sync.RWMutex
	dorks      []Dork
	categories map[string]struct{}
	tags       map[string]struct{}

	// loadErr is set when an existing document could not be read or parsed.
	// The document is moved aside to <path>.corrupt before the first save.
	loadErr  error
	backedUp bool
}

// New opens the catalog stored at path. A missing or unreadable document
// yields an empty catalog; LoadErr reports the latter.
func New(path string, logger *zap.Logger, opts ...Option) *Library {
	l := &Library{
		path:   path,
		logger: logging.OrNop(logger).Named("library"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.load()
	return l
}

func (l *Library) load() {
	doc, err := readDocument(l.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		l.logger.Debug("library document not found, starting empty", logging.Path(l.path))
	case err != nil:
		l.loadErr = err
		l.logger.Warn("failed to load library, starting empty", logging.Path(l.path), zap.Error(err))
	default:
		l.dorks = l.normalizeLoaded(doc.Dorks)
	}
	l.rebuildIndexes()
}

// normalizeLoaded drops entries without a query and renumbers entries whose
// id is missing or already taken, after the highest valid id.
func (l *Library) normalizeLoaded(loaded []Dork) []Dork {
	dorks := make([]Dork, 0, len(loaded))
	ids := make(map[int]struct{}, len(loaded))
	var renumber []int
	maxID := 0
	for _, d := range loaded {
		if strings.TrimSpace(d.Query) == "" {
			l.logger.Warn("dropping library entry without query", logging.Path(l.path), logging.DorkID(d.ID))
			continue
		}
		d = l.normalize(d, "stored")
		if _, dup := ids[d.ID]; dup || d.ID <= 0 {
			renumber = append(renumber, len(dorks))
		} else {
			ids[d.ID] = struct{}{}
			maxID = max(maxID, d.ID)
		}
		dorks = append(dorks, d)
	}
	for _, i := range renumber {
		maxID++
		l.logger.Warn("renumbering library entry", logging.Path(l.path),
			zap.Int("old_id", dorks[i].ID), logging.DorkID(maxID))
		dorks[i].ID = maxID
	}
	return dorks
}

// LoadErr returns the error that prevented an existing document from being
// loaded, or nil if it loaded or did not exist.
func (l *Library) LoadErr() error {
	return l.loadErr
}

func (l *Library) rebuildIndexes() {
	l.categories = make(map[string]struct{})
	l.tags = make(map[string]struct{})
	for _, d := range l.dorks {
		if d.Category != "" {
			l.categories[d.Category] = struct{}{}
		}
		for _, t := range d.Tags {
			l.tags[t] = struct{}{}
		}
	}
}

// Path returns the location of the backing document.
func (l *Library) Path() string {
	return l.path
}

// Add validates d, appends it and persists the catalog. A failed save leaves
// the catalog unchanged.
func (l *Library) Add(d NewDork) (int, error) {
	ids, err := l.AddBatch([]NewDork{d})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// AddBatch adds every dork with a single save. Nothing is added if any
// entry is invalid.
func (l *Library) AddBatch(batch []NewDork) ([]int, error) {
	entries := make([]Dork, 0, len(batch))
	for _, nd := range batch {
		d, err := l.newEntry(nd)
		if err != nil {
			return nil, err
		}
		entries = append(entries, d)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev := len(l.dorks)
	next := l.maxID() + 1
	ids := make([]int, len(entries))
	for i := range entries {
		entries[i].ID = next
		ids[i] = next
		next++
	}
	l.dorks = append(l.dorks, entries...)
	l.rebuildIndexes()

	if err := l.save(); err != nil {
		l.dorks = l.dorks[:prev]
		l.rebuildIndexes()
		return nil, err
	}

	for _, d := range entries {
		l.logger.Debug("dork added", logging.DorkID(d.ID), logging.Category(d.Category))
	}
	return ids, nil
}

func (l *Library) newEntry(nd NewDork) (Dork, error) {
	if strings.TrimSpace(nd.Query) == "" {
		return Dork{}, ErrEmptyQuery
	}
	sev := models.SeverityInfo
	if nd.Severity != "" {
		s, err := models.ParseSeverity(nd.Severity)
		if err != nil {
			return Dork{}, err
		}
		sev = s
	}
	meta := maps.Clone(nd.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	return Dork{
		Name:        nd.Name,
		Query:       nd.Query,
		Category:    nd.Category,
		Description: nd.Description,
		Severity:    sev,
		Tags:        normalizeTags(nd.Tags),
		Created:     l.now().UTC(),
		Metadata:    meta,
	}, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (l *Library) maxID() int {
	highest := 0
	for _, d := range l.dorks {
		highest = max(highest, d.ID)
	}
	return highest
}

// Get returns the dork with the given id.
func (l *Library) Get(id int) (Dork, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.indexOf(id); i >= 0 {
		return l.dorks[i].clone(), true
	}
	return Dork{}, false
}

func (l *Library) indexOf(id int) int {
	for i := range l.dorks {
		if l.dorks[i].ID == id {
			return i
		}
	}
	return -1
}

// RecordUsage bumps the usage count of a dork and persists the catalog.
// Unknown ids are ignored.
func (l *Library) RecordUsage(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		l.logger.Debug("usage ignored, no such dork", logging.DorkID(id))
		return nil
	}

	d := &l.dorks[i]
	prevCount, prevLast := d.UsageCount, d.LastUsed
	now := l.now().UTC()
	d.UsageCount++
	d.LastUsed = &now

	if err := l.save(); err != nil {
		d.UsageCount, d.LastUsed = prevCount, prevLast
		return err
	}

	l.logger.Debug("dork used", logging.DorkID(id), logging.Count(d.UsageCount))
	return nil
}

// Search returns the dorks matching every set field of f, in catalog order.
func (l *Library) Search(f Filter) []Dork {
	l.mu.RLock()
	defer l.mu.RUnlock()

	q := strings.ToLower(f.Query)
	out := []Dork{}
	for _, d := range l.dorks {
		if q != "" &&
			!strings.Contains(strings.ToLower(d.Name), q) &&
			!strings.Contains(strings.ToLower(d.Query), q) &&
			!strings.Contains(strings.ToLower(d.Description), q) {
			continue
		}
		if f.Category != "" && d.Category != f.Category {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(d.Tags, f.Tags) {
			continue
		}
		if f.Severity != "" && d.Severity != f.Severity {
			continue
		}
		out = append(out, d.clone())
	}
	return out
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

// MostPopular returns up to limit dorks ordered by usage count, highest
// first. Equal counts keep catalog order.
func (l *Library) MostPopular(limit int) []Dork {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.mostPopular(limit)
}

func (l *Library) mostPopular(limit int) []Dork {
	if limit <= 0 {
		return []Dork{}
	}
	sorted := make([]Dork, len(l.dorks))
	copy(sorted, l.dorks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageCount > sorted[j].UsageCount
	})
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	for i := range sorted {
		sorted[i] = sorted[i].clone()
	}
	return sorted
}

// Statistics summarises the catalog.
func (l *Library) Statistics() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{
		TotalDorks:        len(l.dorks),
		Categories:        len(l.categories),
		Tags:              len(l.tags),
		SeverityBreakdown: make(map[string]int),
		MostPopular:       l.mostPopular(5),
	}
	if len(l.dorks) == 0 {
		return stats
	}

	total := 0
	for _, d := range l.dorks {
		total += d.UsageCount
		stats.SeverityBreakdown[string(d.Severity)]++
	}
	stats.AverageUsage = float64(total) / float64(len(l.dorks))
	return stats
}

// Categories returns the distinct categories, sorted.
func (l *Library) Categories() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.categories)
}

// Tags returns the distinct tags, sorted.
func (l *Library) Tags() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.tags)
}

// CategoryCounts returns the number of dorks in each category.
func (l *Library) CategoryCounts() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[string]int, len(l.categories))
	for _, d := range l.dorks {
		counts[d.Category]++
	}
	return counts
}

// Len returns the number of dorks in the catalog.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.dorks)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// save writes the catalog document. Callers hold l.mu.
func (l *Library) save() error {
	doc := libraryDocument{
		Version:     documentVersion,
		LastUpdated: l.now().UTC(),
		Dorks:       l.dorks,
		Stats: documentStats{
			TotalDorks: len(l.dorks),
			Categories: sortedKeys(l.categories),
			Tags:       sortedKeys(l.tags),
		},
	}
	if doc.Dorks == nil {
		doc.Dorks = []Dork{}
	}
	if l.loadErr != nil && !l.backedUp {
		if err := os.Rename(l.path, l.path+".corrupt"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("save library: keep unreadable document: %w", err)
		}
		l.logger.Warn("moved unreadable library aside", logging.Path(l.path+".corrupt"))
		l.backedUp = true
	}
	if err := writeDocument(l.path, doc); err != nil {
		return fmt.Errorf("save library: %w", err)
	}
	return nil
}
