package db

import (
	"reflect"
	"testing"

	"github.com/rsclarke/darkdork/internal/models"
)

func TestUpsertTagReturnsExistingID(t *testing.T) {
	db := openTestDB(t)

	red := "red"
	first, err := UpsertTag(db, "exposed", &red, 100)
	if err != nil {
		t.Fatalf("first UpsertTag failed: %v", err)
	}
	second, err := UpsertTag(db, "exposed", nil, 200)
	if err != nil {
		t.Fatalf("second UpsertTag failed: %v", err)
	}
	if first != second {
		t.Errorf("expected same id, got %d and %d", first, second)
	}

	tags, err := ListTags(db)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if tags[0].Color == nil || *tags[0].Color != "red" {
		t.Errorf("expected original color to be kept, got %v", tags[0].Color)
	}
	if tags[0].CreatedAt != 100 {
		t.Errorf("expected created_at 100, got %d", tags[0].CreatedAt)
	}
}

func TestLinkSearchTagDuplicateIsNoop(t *testing.T) {
	db := openTestDB(t)

	searchID, err := CreateSearch(db, models.Search{DorkQuery: "intitle:index.of", ExecutedAt: 1})
	if err != nil {
		t.Fatalf("create search: %v", err)
	}
	tagID, err := UpsertTag(db, "listing", nil, 1)
	if err != nil {
		t.Fatalf("upsert tag: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := LinkSearchTag(db, searchID, tagID); err != nil {
			t.Fatalf("LinkSearchTag #%d failed: %v", i+1, err)
		}
	}

	got, err := GetSearchTags(db, searchID)
	if err != nil {
		t.Fatalf("GetSearchTags failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"listing"}) {
		t.Errorf("GetSearchTags = %v, want [listing]", got)
	}
}

func TestGetSearchTagsEmpty(t *testing.T) {
	db := openTestDB(t)

	got, err := GetSearchTags(db, 99)
	if err != nil {
		t.Fatalf("GetSearchTags failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tags, got %v", got)
	}
}
