// Package stats implements daily review counters, streak tracking, and
// dashboard/heatmap rollups for the spaced-repetition subsystem.
package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oxidian/engine/internal/errs"
)

// DayCounts is the per-day tally of review outcomes.
type DayCounts struct {
	Reviewed int `json:"reviewed"`
	Again    int `json:"again"`
	Hard     int `json:"hard"`
	Good     int `json:"good"`
	Easy     int `json:"easy"`
}

// Streak tracks the current and best consecutive-day review streaks.
type Streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// Stats is the full persisted review-stats record.
type Stats struct {
	Daily        map[string]DayCounts `json:"daily"`
	Streak       Streak               `json:"streak"`
	TotalReviews int                  `json:"total_reviews"`
}

func sidecarPath(vaultDir string) string {
	return filepath.Join(vaultDir, ".oxidian", "remember-stats.json")
}

// Load reads .oxidian/remember-stats.json, returning an empty record if absent.
func Load(vaultDir string) (Stats, error) {
	data, err := os.ReadFile(sidecarPath(vaultDir))
	if err != nil {
		if os.IsNotExist(err) {
			return Stats{Daily: make(map[string]DayCounts)}, nil
		}
		return Stats{}, errs.Wrap(errs.IOFailure, err, "reading remember-stats.json")
	}

	var s Stats
	if err := json.Unmarshal(data, &s); err != nil {
		return Stats{}, errs.Wrap(errs.InvalidInput, err, "malformed remember-stats.json")
	}
	if s.Daily == nil {
		s.Daily = make(map[string]DayCounts)
	}
	return s, nil
}

// Save persists s atomically.
func Save(vaultDir string, s Stats) error {
	dir := filepath.Join(vaultDir, ".oxidian")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.IOFailure, err, "creating .oxidian directory")
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errs.Wrap(errs.IOFailure, err, "marshaling remember-stats.json")
	}

	path := sidecarPath(vaultDir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Wrap(errs.IOFailure, err, "writing remember-stats.json")
	}
	return os.Rename(tmp, path)
}

// RollupBucket maps a raw quality-score label onto the bucket it counts
// toward in DayCounts: "okay" rolls up under "good".
func RollupBucket(label string) string {
	if label == "okay" {
		return "good"
	}
	return label
}

// RecordReview records one review event for day (YYYY-MM-DD local),
// mutating s in place and recomputing the streak.
func RecordReview(s *Stats, day string, label string) {
	if s.Daily == nil {
		s.Daily = make(map[string]DayCounts)
	}
	counts := s.Daily[day]
	counts.Reviewed++
	switch RollupBucket(label) {
	case "again":
		counts.Again++
	case "hard":
		counts.Hard++
	case "good":
		counts.Good++
	case "easy":
		counts.Easy++
	}
	s.Daily[day] = counts
	s.TotalReviews++
	s.Streak = RecomputeStreak(s.Daily, day, s.Streak.Best)
}

// RecomputeStreak walks back from today while the per-day reviewed count
// is > 0; best is the max of prevBest and the newly computed current streak.
func RecomputeStreak(daily map[string]DayCounts, today string, prevBest int) Streak {
	t, err := time.Parse("2006-01-02", today)
	if err != nil {
		return Streak{Best: prevBest}
	}

	current := 0
	cursor := t
	for {
		key := cursor.Format("2006-01-02")
		counts, ok := daily[key]
		if !ok || counts.Reviewed <= 0 {
			break
		}
		current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	best := prevBest
	if current > best {
		best = current
	}
	return Streak{Current: current, Best: best}
}

// HeatmapEntry is one day's review count, for calendar heatmap rendering.
type HeatmapEntry struct {
	Date     string `json:"date"`
	Reviewed int    `json:"reviewed"`
}

// Heatmap returns a sorted-by-date slice of every recorded day's review count.
func Heatmap(s Stats) []HeatmapEntry {
	out := make([]HeatmapEntry, 0, len(s.Daily))
	for day, counts := range s.Daily {
		out = append(out, HeatmapEntry{Date: day, Reviewed: counts.Reviewed})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Dashboard is a compact summary for an at-a-glance view.
type Dashboard struct {
	TotalReviews int     `json:"total_reviews"`
	Streak       Streak  `json:"streak"`
	Today        DayCounts `json:"today"`
}

// BuildDashboard summarizes s as of today (YYYY-MM-DD).
func BuildDashboard(s Stats, today string) Dashboard {
	return Dashboard{
		TotalReviews: s.TotalReviews,
		Streak:       s.Streak,
		Today:        s.Daily[today],
	}
}
