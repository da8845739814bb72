package library

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/rsclarke/darkdork/internal/logging"
	"github.com/rsclarke/darkdork/internal/models"
)

// ExportCategory writes the dorks of one category to dest as a standalone
// document (YAML for .yaml/.yml, JSON otherwise) and returns how many were
// written.
func (l *Library) ExportCategory(category, dest string) (int, error) {
	dorks := l.Search(Filter{Category: category})

	doc := categoryDocument{
		Category: category,
		Dorks:    dorks,
		Exported: l.now().UTC(),
	}
	if err := writeDocument(dest, doc); err != nil {
		return 0, fmt.Errorf("export category %q: %w", category, err)
	}

	l.logger.Debug("category exported", logging.Category(category), logging.Path(dest), logging.Count(len(dorks)))
	return len(dorks), nil
}

// Import merges the dorks of the document at src into the catalog and returns
// how many were added. Entries whose query already exists verbatim, or
// repeats an earlier entry of the same document, are skipped. Imported
// entries are renumbered after the current highest id.
func (l *Library) Import(src string) (int, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", src, err)
	}
	var doc struct {
		Dorks []Dork `json:"dorks" yaml:"dorks"`
	}
	if err := decode(src, data, &doc); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{}, len(l.dorks)+len(doc.Dorks))
	for _, d := range l.dorks {
		seen[d.Query] = struct{}{}
	}

	prev := len(l.dorks)
	next := l.maxID() + 1
	skipped := 0
	for _, d := range doc.Dorks {
		if strings.TrimSpace(d.Query) == "" {
			skipped++
			continue
		}
		if _, dup := seen[d.Query]; dup {
			skipped++
			continue
		}
		seen[d.Query] = struct{}{}

		d = l.normalize(d, "imported")
		d.ID = next
		next++
		l.dorks = append(l.dorks, d)
	}

	added := len(l.dorks) - prev
	if added == 0 {
		l.logger.Debug("nothing to import", logging.Path(src), zap.Int("skipped", skipped))
		return 0, nil
	}

	l.rebuildIndexes()
	if err := l.save(); err != nil {
		l.dorks = l.dorks[:prev]
		l.rebuildIndexes()
		return 0, err
	}

	l.logger.Info("dorks imported", logging.Path(src), logging.Count(added), zap.Int("skipped", skipped))
	return added, nil
}

// normalize brings a dork read from a document in line with the catalog
// invariants. origin names the document kind in log messages.
func (l *Library) normalize(d Dork, origin string) Dork {
	if !d.Severity.Valid() {
		sev, err := models.ParseSeverity(string(d.Severity))
		if err != nil {
			if d.Severity != "" {
				l.logger.Warn("unknown severity on "+origin+" dork, using Info",
					logging.Severity(string(d.Severity)), zap.String("query", d.Query))
			}
			sev = models.SeverityInfo
		}
		d.Severity = sev
	}
	d.Tags = normalizeTags(d.Tags)
	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}
	if d.Created.IsZero() {
		d.Created = l.now().UTC()
	}
	if d.UsageCount < 0 {
		d.UsageCount = 0
	}
	return d
}
