package services

import "time"

// User is an account that owns history. Anonymous sessions have none.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TimelineItem summarises one entry for the history list.
type TimelineItem struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Variant      string    `json:"variant"`
	Notes        string    `json:"notes,omitempty"`
	PointCount   int       `json:"point_count"`
	MaxIntensity int       `json:"max_intensity"`
	Swatches     []string  `json:"swatches"`
	More         int       `json:"more"`
}

// ProgressPoint is one bar of the recent-progress chart.
type ProgressPoint struct {
	EntryID   string    `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
	Day       string    `json:"day"`
	Value     int       `json:"value"`
	Band      string    `json:"band"`
}
