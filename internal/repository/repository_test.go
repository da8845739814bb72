package repository

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsclarke/darkdork/internal/events"
	"github.com/rsclarke/darkdork/internal/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func openTestRepo(t *testing.T) (*Repository, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	repo, err := Open(filepath.Join(t.TempDir(), "test.db"), nil, WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, clock
}

func ptr[T any](v T) *T { return &v }

func TestProjectToFindingFlow(t *testing.T) {
	repo, _ := openTestRepo(t)

	projectID, err := repo.CreateProject(NewProject{Name: "Test", TargetDomain: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), projectID)

	searchID, err := repo.RecordSearch(NewSearch{DorkQuery: "filetype:pdf", ProjectID: &projectID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), searchID)

	resultID, err := repo.AddResult(NewResult{SearchID: searchID, URL: "https://example.com/x.pdf"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resultID)

	findingID, err := repo.CreateFinding(NewFinding{
		ResultID:    resultID,
		Title:       "Exposed PDF",
		Description: "Internal document indexed publicly",
		Severity:    "High",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), findingID)

	findings, err := repo.ListFindings(FindingFilter{Severity: "High"})
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "Exposed PDF", findings[0].Title)
	assert.Equal(t, models.FindingOpen, findings[0].Status)
	assert.Nil(t, findings[0].RemediatedAt)

	none, err := repo.ListFindings(FindingFilter{Severity: "Low"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRemediateFindingTwice(t *testing.T) {
	repo, clock := openTestRepo(t)
	findingID := seedFinding(t, repo)

	require.NoError(t, repo.RemediateFinding(findingID))
	first, err := repo.GetFinding(findingID)
	require.NoError(t, err)
	assert.Equal(t, models.FindingRemediated, first.Status)
	require.NotNil(t, first.RemediatedAt)

	clock.Advance(time.Hour)
	require.NoError(t, repo.RemediateFinding(findingID))
	second, err := repo.GetFinding(findingID)
	require.NoError(t, err)
	assert.Equal(t, models.FindingRemediated, second.Status)
	assert.NotNil(t, second.RemediatedAt)

	assert.NoError(t, repo.RemediateFinding(999))
}

func seedFinding(t *testing.T, repo *Repository) int64 {
	t.Helper()
	searchID, err := repo.RecordSearch(NewSearch{DorkQuery: `intitle:"index of"`})
	require.NoError(t, err)
	resultID, err := repo.AddResult(NewResult{SearchID: searchID, URL: "https://example.com/files/"})
	require.NoError(t, err)
	findingID, err := repo.CreateFinding(NewFinding{ResultID: resultID, Title: "Open listing", Severity: "medium"})
	require.NoError(t, err)
	return findingID
}

func TestCreateTagIsIdempotent(t *testing.T) {
	repo, _ := openTestRepo(t)

	first, err := repo.CreateTag("recon", ptr("#ff0000"))
	require.NoError(t, err)
	second, err := repo.CreateTag("recon", ptr("#00ff00"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	tags, err := repo.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 1)
	require.NotNil(t, tags[0].Color)
	assert.Equal(t, "#ff0000", *tags[0].Color)

	_, err = repo.CreateTag("  ", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTagSearchTwice(t *testing.T) {
	repo, _ := openTestRepo(t)
	searchID, err := repo.RecordSearch(NewSearch{DorkQuery: "site:example.com"})
	require.NoError(t, err)

	require.NoError(t, repo.TagSearch(searchID, "x"))
	require.NoError(t, repo.TagSearch(searchID, "x"))

	tags, err := repo.GetSearchTags(searchID)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, tags)

	err = repo.TagSearch(42, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingParentsReturnNotFound(t *testing.T) {
	repo, _ := openTestRepo(t)

	_, err := repo.RecordSearch(NewSearch{DorkQuery: "inurl:admin", ProjectID: ptr(int64(7))})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.AddResult(NewResult{SearchID: 7, URL: "https://example.com"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.CreateFinding(NewFinding{ResultID: 7, Title: "t", Severity: "Low"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.RecordExport(NewExport{ProjectID: ptr(int64(7)), Format: "csv", Filename: "out.csv"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidInput(t *testing.T) {
	repo, _ := openTestRepo(t)
	searchID, err := repo.RecordSearch(NewSearch{DorkQuery: "ext:sql"})
	require.NoError(t, err)
	resultID, err := repo.AddResult(NewResult{SearchID: searchID, URL: "https://example.com/db.sql"})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{"project without name", func() error { _, err := repo.CreateProject(NewProject{}); return err }},
		{"search without query", func() error { _, err := repo.RecordSearch(NewSearch{}); return err }},
		{"result without url", func() error { _, err := repo.AddResult(NewResult{SearchID: searchID}); return err }},
		{"result bad severity", func() error {
			_, err := repo.AddResult(NewResult{SearchID: searchID, URL: "u", Severity: "urgent"})
			return err
		}},
		{"finding bad severity", func() error {
			_, err := repo.CreateFinding(NewFinding{ResultID: resultID, Title: "t", Severity: "urgent"})
			return err
		}},
		{"finding cvss out of range", func() error {
			_, err := repo.CreateFinding(NewFinding{ResultID: resultID, Title: "t", Severity: "High", CVSSScore: ptr(11.0)})
			return err
		}},
		{"finding cvss not a number", func() error {
			_, err := repo.CreateFinding(NewFinding{ResultID: resultID, Title: "t", Severity: "High", CVSSScore: ptr(math.NaN())})
			return err
		}},
		{"list findings bad status", func() error { _, err := repo.ListFindings(FindingFilter{Status: "closed"}); return err }},
		{"negative analytics window", func() error { _, err := repo.GetAnalyticsSummary(-1); return err }},
		{"export without filename", func() error { _, err := repo.RecordExport(NewExport{Format: "json"}); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), ErrInvalidInput)
		})
	}
}

func TestVerifyResultNotes(t *testing.T) {
	repo, _ := openTestRepo(t)
	searchID, err := repo.RecordSearch(NewSearch{DorkQuery: "ext:env"})
	require.NoError(t, err)
	resultID, err := repo.AddResult(NewResult{SearchID: searchID, URL: "https://example.com/.env", Notes: "initial"})
	require.NoError(t, err)

	require.NoError(t, repo.VerifyResult(resultID, true, ptr("")))
	r, err := repo.GetResult(resultID)
	require.NoError(t, err)
	assert.True(t, r.Verified)
	assert.Equal(t, "initial", r.Notes)

	require.NoError(t, repo.VerifyResult(resultID, false, ptr("false positive")))
	r, err = repo.GetResult(resultID)
	require.NoError(t, err)
	assert.False(t, r.Verified)
	assert.Equal(t, "false positive", r.Notes)

	assert.NoError(t, repo.VerifyResult(999, true, nil))
}

func TestUpdateProject(t *testing.T) {
	repo, clock := openTestRepo(t)
	id, err := repo.CreateProject(NewProject{Name: "Old", Description: "keep"})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	require.NoError(t, repo.UpdateProject(id, ProjectPatch{Name: ptr("New"), Status: ptr("archived")}))

	p, err := repo.GetProject(id)
	require.NoError(t, err)
	assert.Equal(t, "New", p.Name)
	assert.Equal(t, "keep", p.Description)
	assert.Equal(t, "archived", p.Status)
	assert.Greater(t, p.UpdatedAt, p.CreatedAt)

	active, err := repo.ListProjects("active")
	require.NoError(t, err)
	assert.Empty(t, active)

	err = repo.UpdateProject(id, ProjectPatch{Name: ptr("")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo, _ := openTestRepo(t)

	p, err := repo.GetProject(1)
	require.NoError(t, err)
	assert.Nil(t, p)

	s, err := repo.GetSearch(1)
	require.NoError(t, err)
	assert.Nil(t, s)

	results, err := repo.GetResults(1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetStatistics(t *testing.T) {
	repo, clock := openTestRepo(t)

	_, err := repo.CreateProject(NewProject{Name: "p"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := repo.RecordSearch(NewSearch{DorkQuery: "filetype:log"})
		require.NoError(t, err)
	}
	findingID := seedFinding(t, repo)
	seedFinding(t, repo)
	require.NoError(t, repo.RemediateFinding(findingID))

	clock.Advance(8 * 24 * time.Hour)
	stats, err := repo.GetStatistics()
	require.NoError(t, err)

	assert.Equal(t, Statistics{
		TotalProjects:      1,
		TotalSearches:      5,
		TotalResults:       2,
		OpenFindings:       1,
		RemediatedFindings: 1,
		SearchesLast7Days:  0,
	}, *stats)
}

func TestAnalyticsSummaryWindow(t *testing.T) {
	repo, clock := openTestRepo(t)

	// Ten days ago: outside a 7 day window.
	_, err := repo.RecordSearch(NewSearch{DorkQuery: "old"})
	require.NoError(t, err)

	clock.Advance(5 * 24 * time.Hour)
	for _, q := range []string{"b", "a", "b"} {
		_, err := repo.RecordSearch(NewSearch{DorkQuery: q})
		require.NoError(t, err)
	}
	clock.Advance(24 * time.Hour)
	_, err = repo.RecordSearch(NewSearch{DorkQuery: "a"})
	require.NoError(t, err)
	seedFinding(t, repo)

	clock.Advance(4 * 24 * time.Hour)
	summary, err := repo.GetAnalyticsSummary(7)
	require.NoError(t, err)

	assert.Equal(t, 7, summary.Days)
	assert.Equal(t, 5, summary.TotalSearches)
	require.Len(t, summary.SearchesByDay, 2)
	assert.Equal(t, "2024-03-15", summary.SearchesByDay[0].Date)
	assert.Equal(t, 3, summary.SearchesByDay[0].Count)
	assert.Equal(t, "2024-03-16", summary.SearchesByDay[1].Date)
	assert.Equal(t, 2, summary.SearchesByDay[1].Count)

	require.GreaterOrEqual(t, len(summary.TopDorks), 2)
	assert.Equal(t, "a", summary.TopDorks[0].DorkQuery)
	assert.Equal(t, 2, summary.TopDorks[0].Count)
	assert.Equal(t, "b", summary.TopDorks[1].DorkQuery)

	assert.Equal(t, map[string]int{"Medium": 1}, summary.FindingsBySeverity)

	all, err := repo.GetAnalyticsSummary(30)
	require.NoError(t, err)
	assert.Equal(t, 6, all.TotalSearches)

	// "old" sits exactly on the edge of a 10 day window.
	edge, err := repo.GetAnalyticsSummary(10)
	require.NoError(t, err)
	assert.Equal(t, 6, edge.TotalSearches)

	clock.Advance(time.Second)
	past, err := repo.GetAnalyticsSummary(10)
	require.NoError(t, err)
	assert.Equal(t, 5, past.TotalSearches)
}

func TestRecordAnalytics(t *testing.T) {
	repo, clock := openTestRepo(t)

	_, err := repo.RecordAnalytics(events.TypeDorkUsed, events.Data{"dork_id": 1})
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = repo.RecordAnalytics(events.TypeSearchRecorded, nil)
	require.NoError(t, err)

	all, err := repo.ListAnalytics("", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, string(events.TypeSearchRecorded), all[0].EventType)

	used, err := repo.ListAnalytics(events.TypeDorkUsed, 10)
	require.NoError(t, err)
	require.Len(t, used, 1)
	assert.Equal(t, float64(1), used[0].EventData["dork_id"])

	_, err = repo.RecordAnalytics("", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordExport(t *testing.T) {
	repo, _ := openTestRepo(t)
	projectID, err := repo.CreateProject(NewProject{Name: "p"})
	require.NoError(t, err)

	_, err = repo.RecordExport(NewExport{ProjectID: &projectID, Format: "CSV", Filename: "p.csv", RecordCount: 4})
	require.NoError(t, err)
	_, err = repo.RecordExport(NewExport{Format: "json", Filename: "all.json"})
	require.NoError(t, err)

	forProject, err := repo.ListExports(&projectID)
	require.NoError(t, err)
	require.Len(t, forProject, 1)
	assert.Equal(t, "csv", forProject[0].Format)
	assert.Equal(t, 4, forProject[0].RecordCount)

	all, err := repo.ListExports(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestWithTxRollsBack(t *testing.T) {
	repo, _ := openTestRepo(t)
	boom := errors.New("boom")

	err := repo.WithTx(func(tx *Tx) error {
		projectID, err := tx.CreateProject(NewProject{Name: "rolled back"})
		if err != nil {
			return err
		}
		if _, err := tx.RecordSearch(NewSearch{DorkQuery: "q", ProjectID: &projectID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stats, err := repo.GetStatistics()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalProjects)
	assert.Zero(t, stats.TotalSearches)

	err = repo.WithTx(func(tx *Tx) error {
		_, err := tx.CreateProject(NewProject{Name: "committed"})
		return err
	})
	require.NoError(t, err)

	projects, err := repo.ListProjects("")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "committed", projects[0].Name)
}
