package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// PeriodSet is an ordered set of period identifiers
type PeriodSet []PeriodID

// Contains returns true if the period is in the set
func (s PeriodSet) Contains(period PeriodID) bool {
	return slices.Contains(s, period)
}

// Availability maps each weekday to the periods a candidate can cover
type Availability map[time.Weekday]PeriodSet

// On returns the periods available on the given weekday
func (a Availability) On(day time.Weekday) PeriodSet {
	if a == nil {
		return nil
	}
	return a[day]
}

// StringSet is a case-insensitive set of strings such as subject names
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values, ignoring blanks
func NewStringSet(values ...string) StringSet {
	set := make(StringSet, len(values))
	for _, v := range values {
		key := normalize(v)
		if key == "" {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}

// Has returns true if the value is in the set
func (s StringSet) Has(value string) bool {
	_, ok := s[normalize(value)]
	return ok
}

// Len returns the number of entries
func (s StringSet) Len() int {
	return len(s)
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// ParseWeekday converts a day name ("monday", "Mon") to a time.Weekday
func ParseWeekday(name string) (time.Weekday, error) {
	n := normalize(name)
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || (len(n) >= 3 && strings.HasPrefix(full, n)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}

// WeekdayKey returns the storage key for a weekday ("monday")
func WeekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// IsWeekend returns true for Saturday and Sunday
func IsWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

// ParseAvailability decodes availability JSON of the form {"monday": ["1st", "2nd"], ...}.
// An empty document means no availability.
func ParseAvailability(raw string) (Availability, error) {
	if strings.TrimSpace(raw) == "" {
		return Availability{}, nil
	}

	var byDay map[string][]string
	if err := json.Unmarshal([]byte(raw), &byDay); err != nil {
		return nil, fmt.Errorf("invalid availability json: %w", err)
	}

	availability := make(Availability, len(byDay))
	for dayName, periods := range byDay {
		day, err := ParseWeekday(dayName)
		if err != nil {
			return nil, fmt.Errorf("invalid availability: %w", err)
		}

		set := make(PeriodSet, 0, len(periods))
		for _, p := range periods {
			p = strings.TrimSpace(p)
			if p == "" {
				return nil, fmt.Errorf("invalid availability: empty period on %s", dayName)
			}
			if !set.Contains(PeriodID(p)) {
				set = append(set, PeriodID(p))
			}
		}
		availability[day] = set
	}

	return availability, nil
}

// FormatAvailability encodes availability into the JSON form read by ParseAvailability
func FormatAvailability(a Availability) (string, error) {
	byDay := make(map[string][]string, len(a))
	for day, periods := range a {
		values := make([]string, len(periods))
		for i, p := range periods {
			values[i] = string(p)
		}
		byDay[WeekdayKey(day)] = values
	}
	data, err := json.Marshal(byDay)
	if err != nil {
		return "", fmt.Errorf("failed to encode availability: %w", err)
	}
	return string(data), nil
}

// ParseStringSet decodes a JSON array of strings. An empty document is an empty set.
func ParseStringSet(raw string) (StringSet, error) {
	if strings.TrimSpace(raw) == "" {
		return StringSet{}, nil
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("invalid string list json: %w", err)
	}
	return NewStringSet(values...), nil
}
