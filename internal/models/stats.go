// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Platform keys used by the collection endpoints.
const (
	PlatformAndroid = "ANDROID"
	PlatformIOS     = "IOS"
)

// Page is one fetched page of an offset-paginated collection.
// It is immutable once received and discarded after folding.
type Page[T any] struct {
	CurrentPage int `json:"current_page"`
	Items       []T `json:"data"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// PageResponse is the envelope the API wraps paginated collections in.
type PageResponse[T any] struct {
	Data Page[T] `json:"data"`
}

// Score is a numeric score field that the API may deliver as a number,
// a numeric string, or null. Anything non-numeric decodes to 0.
type Score float64

// UnmarshalJSON implements lenient numeric decoding for Score.
func (s *Score) UnmarshalJSON(data []byte) error {
	*s = 0

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*s = Score(Finite(num))
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if parsed, err := strconv.ParseFloat(str, 64); err == nil {
			*s = Score(Finite(parsed))
		}
		return nil
	}

	// null, objects, arrays: coerce to 0 rather than failing the page
	return nil
}

// Finite coerces NaN and ±Inf to 0 so results never expose a non-finite number.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// RoundTo1 rounds to one decimal place, half away from zero.
func RoundTo1(v float64) float64 {
	return math.Round(Finite(v)*10) / 10
}

// DownloadItem is one row of the /downloads collection.
type DownloadItem struct {
	ID        int    `json:"id"`
	DeviceID  int    `json:"device_id"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// EvaluationItem is one row of the /evaluations collection. The score
// field name has varied between API versions (score vs evaluation).
type EvaluationItem struct {
	ID          int    `json:"id"`
	DeviceID    int    `json:"device_id"`
	Score       *Score `json:"score,omitempty"`
	Evaluation  *Score `json:"evaluation,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Description string `json:"description,omitempty"`
	Platform    string `json:"platform"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ScoreValue returns the item's score regardless of which field carried it.
func (e *EvaluationItem) ScoreValue() float64 {
	if e.Score != nil {
		return Finite(float64(*e.Score))
	}
	if e.Evaluation != nil {
		return Finite(float64(*e.Evaluation))
	}
	return 0
}

// ErrorItem is one row of the /errors collection.
type ErrorItem struct {
	ID        int    `json:"id"`
	DeviceID  int    `json:"device_id"`
	Details   string `json:"details"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CategoryStat is the per-category outcome of an aggregation pass.
type CategoryStat struct {
	Count   int
	Average float64
}

// StatResult is the externally visible outcome of an aggregation.
// When Exact is false the per-category counts are proportional
// extrapolations from a page sample and may not sum to Total.
type StatResult struct {
	Total      int
	Categories map[string]CategoryStat
	Average    float64
	Exact      bool
	PagesRead  int
}

// Category returns the stat for a category, zero-valued when absent.
func (r *StatResult) Category(key string) CategoryStat {
	if r.Categories == nil {
		return CategoryStat{}
	}
	return r.Categories[key]
}

// DownloadStats summarizes the /downloads collection per platform.
type DownloadStats struct {
	Total   int
	Android int
	IOS     int
	Exact   bool
}

// EvaluationStats summarizes the /evaluations collection per platform.
type EvaluationStats struct {
	Total   int
	Average float64
	Android float64
	IOS     float64
	Exact   bool
}

// ErrorStats summarizes the /errors collection per platform.
type ErrorStats struct {
	Total     int
	Android   int
	IOS       int
	Variation float64
	Exact     bool
}

// StatSnapshot is one persisted refresh of a resource's statistics (DB model).
type StatSnapshot struct {
	ID        int64
	Resource  string
	Total     int
	Android   float64
	IOS       float64
	Average   float64
	Exact     bool
	CreatedAt time.Time
}

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all available historical data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}
