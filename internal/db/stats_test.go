package db

import (
	"reflect"
	"testing"

	"github.com/rsclarke/darkdork/internal/models"
)

const day = int64(24 * 60 * 60)

func seedSearches(t *testing.T, q Querier, entries map[string][]int64) {
	t.Helper()
	for query, times := range entries {
		for _, ts := range times {
			if _, err := CreateSearch(q, models.Search{DorkQuery: query, ExecutedAt: ts}); err != nil {
				t.Fatalf("create search %q: %v", query, err)
			}
		}
	}
}

func TestSearchesPerDay(t *testing.T) {
	db := openTestDB(t)

	// 1700006400 is 2023-11-15T00:00:00Z.
	base := int64(1700006400)
	seedSearches(t, db, map[string][]int64{
		"filetype:pdf": {base - day, base + 10, base + 20},
		"inurl:admin":  {base + day + 5, base - 10*day},
	})

	got, err := SearchesPerDay(db, base-2*day)
	if err != nil {
		t.Fatalf("SearchesPerDay failed: %v", err)
	}
	want := []DayCount{
		{Date: "2023-11-14", Count: 1},
		{Date: "2023-11-15", Count: 2},
		{Date: "2023-11-16", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SearchesPerDay = %v, want %v", got, want)
	}

	n, err := CountSearchesSince(db, base-2*day)
	if err != nil {
		t.Fatalf("CountSearchesSince failed: %v", err)
	}
	if n != 4 {
		t.Errorf("CountSearchesSince = %d, want 4", n)
	}
}

func TestTopDorkQueries(t *testing.T) {
	db := openTestDB(t)

	seedSearches(t, db, map[string][]int64{
		"b-query": {10, 11},
		"a-query": {12, 13},
		"c-query": {14, 15, 16},
		"old":     {1, 2, 3, 4},
	})

	got, err := TopDorkQueries(db, 10, 2)
	if err != nil {
		t.Fatalf("TopDorkQueries failed: %v", err)
	}
	want := []QueryCount{
		{DorkQuery: "c-query", Count: 3},
		{DorkQuery: "a-query", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopDorkQueries = %v, want %v", got, want)
	}
}

func TestCountRowsUnknownTable(t *testing.T) {
	db := openTestDB(t)

	if _, err := CountRows(db, "sqlite_master"); err == nil {
		t.Error("expected error for table outside the allow-list")
	}
}
