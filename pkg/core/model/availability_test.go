package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAvailability_Valid(t *testing.T) {
	availability, err := ParseAvailability(`{"monday": ["1st", "3rd", "1st"], "Fri": ["2nd"]}`)
	require.NoError(t, err)

	assert.Equal(t, PeriodSet{"1st", "3rd"}, availability.On(time.Monday))
	assert.Equal(t, PeriodSet{"2nd"}, availability.On(time.Friday))
	assert.Empty(t, availability.On(time.Tuesday))
}

func TestParseAvailability_Empty(t *testing.T) {
	availability, err := ParseAvailability("  ")
	require.NoError(t, err)
	assert.Empty(t, availability)
}

func TestParseAvailability_Malformed(t *testing.T) {
	_, err := ParseAvailability(`{"monday": "1st"}`)
	assert.Error(t, err)

	_, err = ParseAvailability(`{"funday": ["1st"]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown weekday")

	_, err = ParseAvailability(`{"monday": [" "]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty period")
}

func TestFormatAvailability_RoundTrip(t *testing.T) {
	original := Availability{time.Wednesday: {"4th", "5th"}}

	raw, err := FormatAvailability(original)
	require.NoError(t, err)

	parsed, err := ParseAvailability(raw)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseStringSet(t *testing.T) {
	set, err := ParseStringSet(`["Math", " physics ", ""]`)
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has("math"))
	assert.True(t, set.Has("Physics"))
	assert.False(t, set.Has("History"))

	_, err = ParseStringSet(`{"math": true}`)
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("Thursday")
	require.NoError(t, err)
	assert.Equal(t, time.Thursday, day)

	day, err = ParseWeekday("tue")
	require.NoError(t, err)
	assert.Equal(t, time.Tuesday, day)

	_, err = ParseWeekday("t")
	assert.Error(t, err)
}

func TestRole_Kind(t *testing.T) {
	assert.Equal(t, KindSubstitute, RoleExternalSubstitute.Kind())
	assert.Equal(t, KindParaprofessional, RoleParaprofessional.Kind())
	assert.Equal(t, KindTeacher, RoleInternalTeacher.Kind())
	assert.False(t, Role("janitor").IsValid())
}

func TestCandidate_RunningDailyLoad(t *testing.T) {
	sub := Candidate{Role: RoleExternalSubstitute, CurrentLoad: 5, DailyCoverage: 2}
	teacher := Candidate{Role: RoleInternalTeacher, CurrentLoad: 5, DailyCoverage: 2}

	assert.Equal(t, 2, sub.RunningDailyLoad())
	assert.Equal(t, 5, teacher.RunningDailyLoad())
}
