package models

import (
	"maps"
	"time"
)

// Filter narrows list queries. Nil/empty fields are ignored.
type Filter struct {
	Status            *Status
	PrintStatus       *PrintStatus
	Gender            string
	IncludeBiometrics bool
	Limit             int
	Offset            int
}

// Matches reports whether c satisfies the status, print status and gender criteria.
func (f Filter) Matches(c *Citizen) bool {
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.PrintStatus != nil && c.PrintStatus != *f.PrintStatus {
		return false
	}
	if f.Gender != "" && !equalFold(c.Profile.Gender, f.Gender) {
		return false
	}
	return true
}

// Counts is the store-level aggregate: every enum value is present, unseen ones at zero.
type Counts struct {
	Total       int
	Status      map[Status]int
	PrintStatus map[PrintStatus]int
}

// NewCounts returns a zero-defaulted Counts.
func NewCounts() Counts {
	c := Counts{
		Status:      make(map[Status]int, len(AllStatuses)),
		PrintStatus: make(map[PrintStatus]int, len(AllPrintStatuses)),
	}
	for _, s := range AllStatuses {
		c.Status[s] = 0
	}
	for _, p := range AllPrintStatuses {
		c.PrintStatus[p] = 0
	}
	return c
}

// Add folds one record into the counts.
func (c *Counts) Add(status Status, print PrintStatus) {
	c.Total++
	c.Status[status]++
	c.PrintStatus[print]++
}

// Stats is the dashboard summary. It is cached, so it carries JSON tags for the cache codec.
type Stats struct {
	TotalPopulation int                 `json:"total_population"`
	Status          map[Status]int      `json:"status"`
	PrintStatus     map[PrintStatus]int `json:"print_status"`
	ComputedAt      time.Time           `json:"computed_at"`
}

// Clone returns a copy that shares no maps with s.
func (s *Stats) Clone() *Stats {
	if s == nil {
		return nil
	}
	out := *s
	out.Status = maps.Clone(s.Status)
	out.PrintStatus = maps.Clone(s.PrintStatus)
	return &out
}

// NewStats builds a dashboard summary from store counts, restoring zero
// defaults for any enum value the counts omit.
func NewStats(c Counts, computedAt time.Time) *Stats {
	zero := NewCounts()
	for k, v := range c.Status {
		zero.Status[k] = v
	}
	for k, v := range c.PrintStatus {
		zero.PrintStatus[k] = v
	}
	return &Stats{
		TotalPopulation: c.Total,
		Status:          zero.Status,
		PrintStatus:     zero.PrintStatus,
		ComputedAt:      computedAt,
	}
}
