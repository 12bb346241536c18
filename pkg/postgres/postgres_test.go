package postgres

import (
	"context"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/pkg/db"
)

func TestMigrationFiles_Sorted(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_rules.sql":   {Data: []byte("SELECT 2")},
		"migrations/001_init.sql":    {Data: []byte("SELECT 1")},
		"migrations/README.md":       {Data: []byte("notes")},
		"migrations/010_indexes.sql": {Data: []byte("SELECT 10")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)

	assert.Equal(t, []string{"001_init.sql", "002_rules.sql", "010_indexes.sql"}, files)
}

func TestMigrationFiles_Embedded(t *testing.T) {
	files, err := migrationFiles(migrationsFS)
	require.NoError(t, err)

	assert.Contains(t, files, "001_init.sql")
}

func TestPendingMigrations(t *testing.T) {
	files := []string{"001_init.sql", "002_rules.sql", "003_indexes.sql"}
	applied := map[string]bool{"001_init.sql": true}

	pending := pendingMigrations(files, applied)

	assert.Equal(t, []string{"002_rules.sql", "003_indexes.sql"}, pending)
}

func TestPendingMigrations_AllApplied(t *testing.T) {
	files := []string{"001_init.sql"}
	applied := map[string]bool{"001_init.sql": true}

	assert.Empty(t, pendingMigrations(files, applied))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	require.NotNil(t, nullable("sub-1"))
	assert.Equal(t, "sub-1", *nullable("sub-1"))

	assert.Equal(t, "", valueOf(nil))
	s := "para-1"
	assert.Equal(t, "para-1", valueOf(&s))
}

// TestDB_ReplaceCoverageAssignments runs against a real database when
// STAFFCOVER_TEST_DATABASE_URL is set
func TestDB_ReplaceCoverageAssignments(t *testing.T) {
	connString := os.Getenv("STAFFCOVER_TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("STAFFCOVER_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := NewDB(ctx, connString, zap.NewNop())
	require.NoError(t, err)
	defer database.Close()

	_, err = database.RunMigrations(ctx)
	require.NoError(t, err)

	absenceID := "test-" + uuid.New().String()
	_, err = database.pool.Exec(ctx, `
		INSERT INTO absence (id, school_id, staff_id, absence_date, periods_to_cover)
		VALUES ($1, 'school-1', 'teacher-1', '2025-03-12', $2)
	`, absenceID, []string{"1st", "2nd"})
	require.NoError(t, err)
	defer database.pool.Exec(ctx, `DELETE FROM absence WHERE id = $1`, absenceID)

	absence, err := database.GetAbsence(ctx, absenceID)
	require.NoError(t, err)
	require.NotNil(t, absence)
	assert.Equal(t, "2025-03-12", absence.Date)
	assert.Equal(t, []string{"1st", "2nd"}, absence.PeriodsToCover)

	first := []db.CoverageAssignment{
		{ID: uuid.New().String(), Date: "2025-03-12", Periods: []string{"1st"}, AssigneeID: "para-1", Kind: "Paraprofessional"},
		{ID: uuid.New().String(), Date: "2025-03-12", Periods: []string{"2nd"}, Reason: "no available staff"},
	}
	require.NoError(t, database.ReplaceCoverageAssignments(ctx, absenceID, first))

	second := []db.CoverageAssignment{
		{ID: uuid.New().String(), Date: "2025-03-12", Periods: []string{"1st", "2nd"}, AssigneeID: "sub-1", Kind: "Substitute"},
	}
	require.NoError(t, database.ReplaceCoverageAssignments(ctx, absenceID, second))

	rows, err := database.GetCoverageAssignmentsForDate(ctx, "2025-03-12")
	require.NoError(t, err)

	var mine []db.CoverageAssignment
	for _, r := range rows {
		if r.AbsenceID == absenceID {
			mine = append(mine, r)
		}
	}
	require.Len(t, mine, 1)
	assert.Equal(t, "sub-1", mine[0].AssigneeID)
	assert.Equal(t, []string{"1st", "2nd"}, mine[0].Periods)

	require.NoError(t, database.UpdateAbsenceStatus(ctx, absenceID, "assigned"))
	absence, err = database.GetAbsence(ctx, absenceID)
	require.NoError(t, err)
	assert.Equal(t, "assigned", absence.Status)
}

func TestDateLockKey(t *testing.T) {
	assert.Equal(t, "staffcover:coverage_date:2025-03-12", dateLockKey("2025-03-12"))
	assert.NotEqual(t, dateLockKey("2025-03-12"), dateLockKey("2025-03-13"))
}

// TestDB_LockDate uses two pools to stand in for two CLI processes
func TestDB_LockDate(t *testing.T) {
	connString := os.Getenv("STAFFCOVER_TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("STAFFCOVER_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	first, err := NewDB(ctx, connString, zap.NewNop())
	require.NoError(t, err)
	defer first.Close()
	second, err := NewDB(ctx, connString, zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	date := "2099-01-05"
	unlock, err := first.LockDate(ctx, date)
	require.NoError(t, err)

	// The second process waits while the date is held
	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = second.LockDate(waitCtx, date)
	require.Error(t, err)

	// A different date is not blocked
	unlockOther, err := second.LockDate(ctx, "2099-01-06")
	require.NoError(t, err)
	unlockOther()

	unlock()

	unlockSecond, err := second.LockDate(ctx, date)
	require.NoError(t, err)
	unlockSecond()
}
