package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/internal/config"
	"github.com/jakechorley/staff-cover/pkg/core/services"
	"github.com/jakechorley/staff-cover/pkg/db"
)

const testData = `
absences:
  - id: abs-1
    schoolID: school-1
    staffID: teacher-1
    staffName: Ada Teacher
    date: "2025-03-12"
    periodsToCover: ["1st", "2nd"]
    subject: Math
    status: pending
  - id: abs-2
    schoolID: school-1
    staffID: teacher-2
    date: "2025-03-13"
    periodsToCover: ["3rd"]
    status: pending
candidates:
  - id: sub-1
    schoolID: school-1
    name: Sam Sub
    role: external_substitute
    availability: '{"wednesday": ["1st", "2nd"], "thursday": ["3rd"]}'
    subjectSpecialties: '["math"]'
    active: true
  - id: para-1
    schoolID: school-1
    name: Pat Para
    role: paraprofessional
    availability: '{"wednesday": ["1st"]}'
    active: false
schedule:
  - id: sch-1
    staffID: teacher-3
    dayOfWeek: Wednesday
    period: 1st
    kind: class
loadLimits:
  - id: limit-1
    staffID: sub-1
    maxPeriodsPerDay: 4
rules:
  - id: rule-2
    schoolID: school-1
    name: Union cap
    category: union
    ruleType: hard
    conditions: '{"maxCoveragePerWeek": 10}'
    actions: '{"preventAssignment": true}'
    priority: 2
    active: true
  - id: rule-1
    schoolID: school-1
    name: Protect lunch
    category: policy
    ruleType: hard
    conditions: '{"protectedPeriodTypes": ["lunch"]}'
    priority: 1
    active: true
  - id: rule-3
    schoolID: school-1
    name: Retired
    category: custom
    ruleType: soft
    active: false
periods:
  - schoolID: school-1
    period: 2nd
    position: 2
  - schoolID: school-1
    period: 1st
    position: 1
`

func writeDataFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testData), 0644))
	return path
}

func TestOpen(t *testing.T) {
	store, err := Open(writeDataFile(t), zap.NewNop())
	require.NoError(t, err)

	data := store.Dataset()
	assert.Len(t, data.Absences, 2)
	assert.Len(t, data.Candidates, 2)
	assert.Len(t, data.Rules, 3)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.yaml"), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read data file")
}

func TestOpen_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("absences: [unclosed"), 0644))

	_, err := Open(path, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse data file")
}

func TestStore_Queries(t *testing.T) {
	ctx := context.Background()
	store, err := Open(writeDataFile(t), zap.NewNop())
	require.NoError(t, err)

	absence, err := store.GetAbsence(ctx, "abs-1")
	require.NoError(t, err)
	require.NotNil(t, absence)
	assert.Equal(t, []string{"1st", "2nd"}, absence.PeriodsToCover)

	missing, err := store.GetAbsence(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	absences, err := store.GetAbsencesForDate(ctx, "2025-03-12")
	require.NoError(t, err)
	require.Len(t, absences, 1)
	assert.Equal(t, "abs-1", absences[0].ID)

	// Day matching ignores case
	entries, err := store.GetScheduleForDay(ctx, "wednesday")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "teacher-3", entries[0].StaffID)

	// Inactive candidates are returned; the pool builder filters them
	paras, err := store.GetCandidates(ctx, "paraprofessional")
	require.NoError(t, err)
	require.Len(t, paras, 1)
	assert.False(t, paras[0].Active)

	limit, err := store.GetLoadLimit(ctx, "sub-1")
	require.NoError(t, err)
	require.NotNil(t, limit)
	require.NotNil(t, limit.MaxPeriodsPerDay)
	assert.Equal(t, 4, *limit.MaxPeriodsPerDay)
	assert.Nil(t, limit.MaxPeriodsPerWeek)

	noLimit, err := store.GetLoadLimit(ctx, "para-1")
	require.NoError(t, err)
	assert.Nil(t, noLimit)

	rules, err := store.GetActiveRules(ctx, "school-1")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "rule-1", rules[0].ID)
	assert.Equal(t, "rule-2", rules[1].ID)

	periods, err := store.GetPeriodConfigs(ctx, "school-1")
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "1st", periods[0].Period)

	otherSchool, err := store.GetPeriodConfigs(ctx, "school-2")
	require.NoError(t, err)
	assert.Empty(t, otherSchool)
}

func TestStore_LockDate(t *testing.T) {
	store := New(Dataset{}, nil)

	unlock, err := store.LockDate(context.Background(), "2025-03-12")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		unlockSecond, err := store.LockDate(context.Background(), "2025-03-12")
		assert.NoError(t, err)
		close(acquired)
		unlockSecond()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock on the same date did not wait")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock was not granted after release")
	}
}

func TestStore_ReplaceCoverageAssignments(t *testing.T) {
	ctx := context.Background()
	store := New(Dataset{
		CoverageAssignments: []db.CoverageAssignment{
			{ID: "old-1", AbsenceID: "abs-1", Date: "2025-03-12", Periods: []string{"1st"}, AssigneeID: "para-1"},
			{ID: "other", AbsenceID: "abs-2", Date: "2025-03-12", Periods: []string{"2nd"}, AssigneeID: "sub-1"},
		},
	}, nil)

	err := store.ReplaceCoverageAssignments(ctx, "abs-1", []db.CoverageAssignment{
		{ID: "new-1", Date: "2025-03-12", Periods: []string{"1st", "3rd"}, AssigneeID: "sub-2"},
	})
	require.NoError(t, err)

	rows, err := store.GetCoverageAssignmentsForDate(ctx, "2025-03-12")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	ids := []string{rows[0].ID, rows[1].ID}
	assert.ElementsMatch(t, []string{"other", "new-1"}, ids)
	for _, r := range rows {
		if r.ID == "new-1" {
			assert.Equal(t, "abs-1", r.AbsenceID)
		}
	}
}

func TestStore_UpdateAbsenceStatus(t *testing.T) {
	ctx := context.Background()
	store := New(Dataset{Absences: []db.Absence{{ID: "abs-1", Status: "pending"}}}, nil)

	require.NoError(t, store.UpdateAbsenceStatus(ctx, "abs-1", "assigned"))
	absence, err := store.GetAbsence(ctx, "abs-1")
	require.NoError(t, err)
	assert.Equal(t, "assigned", absence.Status)

	err = store.UpdateAbsenceStatus(ctx, "missing", "assigned")
	require.Error(t, err)
}

func TestStore_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := writeDataFile(t)
	store, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.ReplaceCoverageAssignments(ctx, "abs-1", []db.CoverageAssignment{
		{ID: "row-1", Date: "2025-03-12", Periods: []string{"1st", "2nd"}, AssigneeID: "sub-1", Kind: "Substitute"},
	}))
	require.NoError(t, store.UpdateAbsenceStatus(ctx, "abs-1", "assigned"))
	require.NoError(t, store.Save())

	reopened, err := Open(path, zap.NewNop())
	require.NoError(t, err)

	rows, err := reopened.GetCoverageAssignmentsForDate(ctx, "2025-03-12")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sub-1", rows[0].AssigneeID)

	absence, err := reopened.GetAbsence(ctx, "abs-1")
	require.NoError(t, err)
	assert.Equal(t, "assigned", absence.Status)
}

func TestStore_SaveWithoutFile(t *testing.T) {
	store := New(Dataset{}, nil)

	err := store.Save()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no backing file")
}

func TestStore_AssignCoverageEndToEnd(t *testing.T) {
	ctx := context.Background()
	store, err := Open(writeDataFile(t), zap.NewNop())
	require.NoError(t, err)

	cfg := &config.Config{
		DataFile:       "data.yaml",
		SchoolID:       "school-1",
		DefaultPeriods: []string{"1st", "2nd", "3rd"},
	}
	service, err := services.NewCoverageService(store, cfg, zap.NewNop(), nil, nil)
	require.NoError(t, err)

	result, err := service.AssignCoverage(ctx, "abs-1")
	require.NoError(t, err)

	assert.True(t, result.Collapsed)
	rows, err := store.GetCoverageAssignmentsForDate(ctx, "2025-03-12")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sub-1", rows[0].AssigneeID)
	assert.Equal(t, []string{"1st", "2nd"}, rows[0].Periods)
	assert.Equal(t, "Substitute", rows[0].Kind)
}
