package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const documentVersion = "2.0"

type libraryDocument struct {
	Version     string        `json:"version" yaml:"version"`
	LastUpdated time.Time     `json:"last_updated" yaml:"last_updated"`
	Dorks       []Dork        `json:"dorks" yaml:"dorks"`
	Stats       documentStats `json:"stats" yaml:"stats"`
}

type documentStats struct {
	TotalDorks int      `json:"total_dorks" yaml:"total_dorks"`
	Categories []string `json:"categories" yaml:"categories"`
	Tags       []string `json:"tags" yaml:"tags"`
}

type categoryDocument struct {
	Category string    `json:"category" yaml:"category"`
	Dorks    []Dork    `json:"dorks" yaml:"dorks"`
	Exported time.Time `json:"exported" yaml:"exported"`
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func readDocument(path string) (*libraryDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc libraryDocument
	if err := decode(path, data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decode(path string, data []byte, v any) error {
	if isYAML(path) {
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse yaml %s: %w", path, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse json %s: %w", path, err)
	}
	return nil
}

// writeDocument encodes v as YAML or JSON depending on the extension of path.
func writeDocument(path string, v any) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFileAtomic(path, data, 0o644)
}

// writeFileAtomic replaces path with data so readers see either the old or
// the new content.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
