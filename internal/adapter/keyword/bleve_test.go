package keyword

import (
	"context"
	"testing"

	"ragcore/internal/domain"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func seed(t *testing.T, idx *BleveIndex) {
	t.Helper()
	err := idx.Index(context.Background(), []domain.IndexedEntry{
		{
			ChunkID: "c1",
			Payload: domain.Payload{
				DocumentID:   "doc1",
				ChunkIndex:   0,
				Text:         "photosynthesis converts sunlight into chemical energy in plants",
				QualityScore: 85,
				Language:     "en",
				CourseID:     "bio-101",
				Title:        "Photosynthesis",
			},
		},
		{
			ChunkID: "c2",
			Payload: domain.Payload{
				DocumentID:   "doc1",
				ChunkIndex:   1,
				Text:         "chlorophyll absorbs light most strongly in the blue portion",
				QualityScore: 60,
				Language:     "en",
				CourseID:     "bio-101",
			},
		},
		{
			ChunkID: "c3",
			Payload: domain.Payload{
				DocumentID:   "doc2",
				ChunkIndex:   0,
				Text:         "the industrial revolution transformed manufacturing processes",
				QualityScore: 90,
				Language:     "en",
				CourseID:     "hist-201",
				Metadata:     map[string]string{"source": "textbook"},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestBleveSearchMatchesRelevantChunks(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)

	results, err := idx.Search(context.Background(), "photosynthesis sunlight", domain.Filter{}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected hits for matching terms")
	}
	if results[0].ChunkID != "c1" {
		t.Errorf("expected c1 ranked first, got %s", results[0].ChunkID)
	}
	if results[0].Source != domain.SourceKeyword {
		t.Errorf("expected keyword source, got %s", results[0].Source)
	}
	if results[0].Payload.DocumentID != "doc1" || results[0].Payload.QualityScore != 85 {
		t.Errorf("payload not restored from stored fields: %+v", results[0].Payload)
	}
	for _, r := range results {
		if r.ChunkID == "c3" {
			t.Error("unrelated chunk matched")
		}
	}
}

func TestBleveSearchAppliesQualityAndCourseFilters(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)

	results, err := idx.Search(context.Background(), "light", domain.Filter{MinQuality: 70, CourseID: "bio-101"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Payload.QualityScore < 70 {
			t.Errorf("chunk %s below quality floor", r.ChunkID)
		}
		if r.Payload.CourseID != "bio-101" {
			t.Errorf("chunk %s from wrong course", r.ChunkID)
		}
	}
}

func TestBleveSearchAppliesMetadataEquality(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)

	results, err := idx.Search(context.Background(), "industrial revolution", domain.Filter{Equals: map[string]string{"source": "textbook"}}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ChunkID != "c3" {
		t.Fatalf("expected only c3, got %+v", results)
	}
	if results[0].Payload.Metadata["source"] != "textbook" {
		t.Errorf("metadata not restored: %+v", results[0].Payload.Metadata)
	}

	none, err := idx.Search(context.Background(), "industrial revolution", domain.Filter{Equals: map[string]string{"source": "forum"}}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("expected no hits for mismatched metadata, got %+v", none)
	}
}

func TestBleveDeleteByDocument(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)
	ctx := context.Background()

	removed, err := idx.DeleteByDocument(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	ids, err := idx.DocumentChunkIDs(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no remaining chunks, got %v", ids)
	}

	results, err := idx.Search(ctx, "photosynthesis", domain.Filter{}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("deleted chunks still searchable: %+v", results)
	}
}

func TestBleveDocumentChunkIDs(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)

	ids, err := idx.DocumentChunkIDs(context.Background(), "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 chunk IDs, got %v", ids)
	}
}

func TestBlevePing(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
}
