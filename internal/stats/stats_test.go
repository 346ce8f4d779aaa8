package stats

import (
	"testing"
)

func TestRecordReviewAccumulatesAndRollsUpOkay(t *testing.T) {
	s := Stats{Daily: make(map[string]DayCounts)}
	RecordReview(&s, "2026-07-31", "okay")
	RecordReview(&s, "2026-07-31", "good")
	RecordReview(&s, "2026-07-31", "again")

	day := s.Daily["2026-07-31"]
	if day.Reviewed != 3 {
		t.Errorf("Reviewed = %d, want 3", day.Reviewed)
	}
	if day.Good != 2 {
		t.Errorf("expected okay rolled into good, Good = %d", day.Good)
	}
	if day.Again != 1 {
		t.Errorf("Again = %d", day.Again)
	}
	if s.TotalReviews != 3 {
		t.Errorf("TotalReviews = %d", s.TotalReviews)
	}
}

func TestRecomputeStreakConsecutiveDays(t *testing.T) {
	daily := map[string]DayCounts{
		"2026-07-29": {Reviewed: 2},
		"2026-07-30": {Reviewed: 1},
		"2026-07-31": {Reviewed: 3},
	}
	streak := RecomputeStreak(daily, "2026-07-31", 0)
	if streak.Current != 3 {
		t.Errorf("Current = %d, want 3", streak.Current)
	}
	if streak.Best != 3 {
		t.Errorf("Best = %d, want 3", streak.Best)
	}
}

func TestRecomputeStreakBreaksOnGap(t *testing.T) {
	daily := map[string]DayCounts{
		"2026-07-29": {Reviewed: 1},
		"2026-07-31": {Reviewed: 3},
	}
	streak := RecomputeStreak(daily, "2026-07-31", 5)
	if streak.Current != 1 {
		t.Errorf("Current = %d, want 1", streak.Current)
	}
	if streak.Best != 5 {
		t.Errorf("Best = %d, want preserved at 5", streak.Best)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := Stats{Daily: map[string]DayCounts{"2026-07-31": {Reviewed: 2, Good: 2}}, TotalReviews: 2}

	if err := Save(dir, s); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.TotalReviews != 2 {
		t.Errorf("TotalReviews = %d", loaded.TotalReviews)
	}
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Daily) != 0 {
		t.Errorf("expected empty daily map, got %v", s.Daily)
	}
}

func TestHeatmapSortedByDate(t *testing.T) {
	s := Stats{Daily: map[string]DayCounts{
		"2026-07-31": {Reviewed: 1},
		"2026-07-29": {Reviewed: 2},
		"2026-07-30": {Reviewed: 3},
	}}
	hm := Heatmap(s)
	if len(hm) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(hm))
	}
	if hm[0].Date != "2026-07-29" || hm[2].Date != "2026-07-31" {
		t.Errorf("Heatmap not sorted: %v", hm)
	}
}
