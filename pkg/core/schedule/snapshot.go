package schedule

import (
	"slices"
	"time"

	"github.com/jakechorley/staff-cover/pkg/core/model"
)

type periodSet map[model.PeriodID]bool

// Snapshot is a read-only view of one school day, plus the weekly totals needed for
// weekly caps. It is built once per run and never refreshed mid-run.
type Snapshot struct {
	Date    time.Time
	Weekday time.Weekday

	absent   map[string]bool
	teaching map[string]periodSet
	prep     map[string]periodSet
	covering map[string]periodSet

	weeklyLoad     map[string]int
	weeklyCoverage map[string]int
}

func newSnapshot(date time.Time) *Snapshot {
	return &Snapshot{
		Date:           date,
		Weekday:        date.Weekday(),
		absent:         make(map[string]bool),
		teaching:       make(map[string]periodSet),
		prep:           make(map[string]periodSet),
		covering:       make(map[string]periodSet),
		weeklyLoad:     make(map[string]int),
		weeklyCoverage: make(map[string]int),
	}
}

func addPeriod(m map[string]periodSet, staffID string, period model.PeriodID) bool {
	set, ok := m[staffID]
	if !ok {
		set = make(periodSet)
		m[staffID] = set
	}
	if set[period] {
		return false
	}
	set[period] = true
	return true
}

// IsAbsent returns true if the staff member has an absence on the snapshot date
func (s *Snapshot) IsAbsent(staffID string) bool {
	return s.absent[staffID]
}

// IsTeaching returns true if the staff member has a class or duty in the period
func (s *Snapshot) IsTeaching(staffID string, period model.PeriodID) bool {
	return s.teaching[staffID][period]
}

// IsPrepPeriod returns true if the period is the staff member's prep period
func (s *Snapshot) IsPrepPeriod(staffID string, period model.PeriodID) bool {
	return s.prep[staffID][period]
}

// IsCovering returns true if the staff member already covers the period for another absence
func (s *Snapshot) IsCovering(staffID string, period model.PeriodID) bool {
	return s.covering[staffID][period]
}

// IsBusy returns true if the staff member cannot take the period
func (s *Snapshot) IsBusy(staffID string, period model.PeriodID) bool {
	return s.IsAbsent(staffID) || s.IsTeaching(staffID, period) || s.IsCovering(staffID, period)
}

// DailyLoad is the number of periods the staff member teaches or covers on the date
func (s *Snapshot) DailyLoad(staffID string) int {
	return len(s.BusyPeriods(staffID))
}

// DailyCoverage is the number of periods the staff member already covers on the date
func (s *Snapshot) DailyCoverage(staffID string) int {
	return len(s.covering[staffID])
}

// WeeklyLoad is the number of periods taught or covered across the school week
func (s *Snapshot) WeeklyLoad(staffID string) int {
	return s.weeklyLoad[staffID]
}

// WeeklyCoverage is the number of periods covered across the school week
func (s *Snapshot) WeeklyCoverage(staffID string) int {
	return s.weeklyCoverage[staffID]
}

// BusyPeriods returns the periods the staff member teaches or covers on the date, sorted
func (s *Snapshot) BusyPeriods(staffID string) []model.PeriodID {
	busy := make([]model.PeriodID, 0, len(s.teaching[staffID])+len(s.covering[staffID]))
	for p := range s.teaching[staffID] {
		busy = append(busy, p)
	}
	for p := range s.covering[staffID] {
		if !s.teaching[staffID][p] {
			busy = append(busy, p)
		}
	}
	slices.Sort(busy)
	return busy
}
