package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DARKDORK_DB", filepath.Join(dir, "data", "darkdork.db"))
	t.Setenv("DARKDORK_LIBRARY", filepath.Join(dir, "data", "dork_library.json"))
	t.Setenv("DARKDORK_SEED", "false")
	t.Setenv("DARKDORK_LOG_LEVEL", "error")
	return dir
}

// resetFlags restores every flag to its default so one invocation does not
// leak into the next.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		switch v := f.Value.(type) {
		case pflag.SliceValue:
			_ = v.Replace(nil)
		default:
			if f.Value.Type() != "stringToString" {
				_ = f.Value.Set(f.DefValue)
			}
		}
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "darkdork %v: %s", args, out.String())
	return out.String()
}

func TestProjectWorkflow(t *testing.T) {
	setupCLI(t)

	assert.Equal(t, "Project 1 created.\n", runCLI(t, "project", "create", "Test", "--target", "example.com"))
	assert.Equal(t, "Search 1 recorded.\n", runCLI(t, "search", "record", "filetype:pdf", "--project", "1", "--tags", "pdf,recon"))
	assert.Equal(t, "Result 1 added.\n", runCLI(t, "result", "add", "1", "https://example.com/x.pdf"))
	assert.Equal(t, "Finding 1 created.\n", runCLI(t, "finding", "create", "1", "Exposed PDF", "--severity", "high", "--cvss", "7.5"))

	var shown struct {
		Tags    []string `json:"tags"`
		Results []struct {
			Verified bool `json:"verified"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(runCLI(t, "search", "show", "1")), &shown))
	assert.Equal(t, []string{"pdf", "recon"}, shown.Tags)
	require.Len(t, shown.Results, 1)
	assert.True(t, shown.Results[0].Verified)

	assert.Contains(t, runCLI(t, "finding", "list", "--severity", "high"), "Exposed PDF")
	assert.Contains(t, runCLI(t, "finding", "list", "--status", "open"), "Exposed PDF")
	assert.Equal(t, "Finding 1 remediated.\n", runCLI(t, "finding", "remediate", "1"))

	var stats map[string]int
	require.NoError(t, json.Unmarshal([]byte(runCLI(t, "stats")), &stats))
	assert.Equal(t, 1, stats["total_projects"])
	assert.Equal(t, 1, stats["total_searches"])
	assert.Equal(t, 0, stats["open_findings"])
	assert.Equal(t, 1, stats["remediated_findings"])

	created := runCLI(t, "analytics", "events", "--type", "finding_created")
	assert.Contains(t, created, "finding_created")
	assert.Contains(t, created, "severity:High")
	assert.NotContains(t, created, "severity:high")
}

func TestDorkWorkflow(t *testing.T) {
	dir := setupCLI(t)

	assert.Equal(t, "Dork 1 added.\n", runCLI(t, "dork", "add", `filetype:pdf "confidential"`,
		"--category", "Exposed Documents", "--severity", "High", "--tags", "documents,pdf"))
	assert.Contains(t, runCLI(t, "dork", "search", "--severity", "high"), `filetype:pdf "confidential"`)

	out := runCLI(t, "dork", "use", "1", "--record")
	assert.Contains(t, out, "Search 1 recorded.")

	var stats struct {
		AverageUsage float64 `json:"average_usage"`
	}
	require.NoError(t, json.Unmarshal([]byte(runCLI(t, "dork", "stats")), &stats))
	assert.Equal(t, 1.0, stats.AverageUsage)

	exported := filepath.Join(dir, "docs.yaml")
	assert.Contains(t, runCLI(t, "dork", "export", "Exposed Documents", exported), "Exported 1 dorks")
	assert.Contains(t, runCLI(t, "dork", "import", exported), "Imported 0 new dorks")

	assert.Contains(t, runCLI(t, "analytics", "events"), "dork_used")
}

func TestDorkSeed(t *testing.T) {
	setupCLI(t)

	assert.Contains(t, runCLI(t, "dork", "seed"), "Seeded")
	assert.Equal(t, "Library is not empty, nothing seeded.\n", runCLI(t, "dork", "seed"))
	assert.Contains(t, runCLI(t, "dork", "categories"), "API & Secrets")
}

func TestCorruptLibraryIsNotSeededOver(t *testing.T) {
	dir := setupCLI(t)
	t.Setenv("DARKDORK_SEED", "true")

	path := filepath.Join(dir, "data", "dork_library.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	truncated := []byte(`{"version":"2.0","dorks":[{"id":1,"query":"inurl:my-own-dork","category":"Mine"`)
	require.NoError(t, os.WriteFile(path, truncated, 0o600))

	assert.Equal(t, "No dorks found.\n", runCLI(t, "dork", "search", "-q", "nothing-matches-this"))
	assert.Contains(t, runCLI(t, "dork", "stats"), `"total_dorks": 0`)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, truncated, got, "read-only commands must leave an unreadable library untouched")
	assert.NoFileExists(t, path+".corrupt")
}

func TestHelpers(t *testing.T) {
	_, err := parseID("abc", "search")
	assert.Error(t, err)
	_, err = parseID("0", "search")
	assert.Error(t, err)
	id, err := parseID("12", "search")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	assert.Nil(t, optionalID(0))
	assert.Equal(t, int64(3), *optionalID(3))

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "-", dash(""))
}
