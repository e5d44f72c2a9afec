package repository

import (
	"testing"
	"time"
	"work-time-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func TestHolidayReplaceYearAndRange(t *testing.T) {
	repo, err := NewGormHolidayRepository(newTestDB(t))
	require.NoError(t, err)

	manual := &models.Holiday{Date: models.NewDate(2026, 12, 24), Region: "BY", Year: 2026, Name: "Heiligabend", Scope: 0.5, IsManual: true}
	require.NoError(t, repo.Upsert(manual))
	require.NoError(t, repo.Upsert(&models.Holiday{Date: models.NewDate(2026, 1, 1), Region: "BE", Year: 2026, Name: "Neujahr", Scope: 1}))

	generated := []models.Holiday{
		{Date: models.NewDate(2026, 1, 1), Region: "BY", Year: 2026, Name: "Neujahr", Scope: 1},
		{Date: models.NewDate(2026, 1, 6), Region: "BY", Year: 2026, Name: "Heilige Drei Könige", Scope: 1},
	}
	require.NoError(t, repo.ReplaceYear(2026, "BY", generated))

	byYear, err := repo.GetByYear(2026, "BY")
	require.NoError(t, err)
	require.Len(t, byYear, 2)

	count, err := repo.CountByYear(2026, "BE")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	inRange, err := repo.GetInRange(models.NewDate(2026, 1, 1), models.NewDate(2026, 1, 5), "BY")
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	assert.Equal(t, "Neujahr", inRange[0].Name)

	// last day of the range is inclusive
	inRange, err = repo.GetInRange(models.NewDate(2026, 1, 2), models.NewDate(2026, 1, 6), "BY")
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	assert.Equal(t, "Heilige Drei Könige", inRange[0].Name)
}

func TestHolidayUpsertOverwritesSameDateRegion(t *testing.T) {
	repo, err := NewGormHolidayRepository(newTestDB(t))
	require.NoError(t, err)

	day := models.NewDate(2026, 12, 31)
	require.NoError(t, repo.Upsert(&models.Holiday{Date: day, Region: "BY", Year: 2026, Name: "Silvester", Scope: 0.5, IsManual: true}))
	require.NoError(t, repo.Upsert(&models.Holiday{Date: day, Region: "BY", Year: 2026, Name: "Silvester", Scope: 1, IsManual: true}))

	h, err := repo.GetByDate(day, "BY")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 1.0, h.Scope)

	missing, err := repo.GetByDate(day, "BE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAbsenceOverlapIgnoresCancelledAndSelf(t *testing.T) {
	repo, err := NewGormAbsenceRepository(newTestDB(t))
	require.NoError(t, err)

	a := &models.Absence{EmployeeID: 1, Type: models.AbsenceTypeVacation, StartDate: models.NewDate(2026, 7, 1), EndDate: models.NewDate(2026, 7, 10), Scope: 1, Status: models.AbsenceStatusApproved}
	c := &models.Absence{EmployeeID: 1, Type: models.AbsenceTypeVacation, StartDate: models.NewDate(2026, 7, 20), EndDate: models.NewDate(2026, 7, 22), Scope: 1, Status: models.AbsenceStatusCancelled}
	other := &models.Absence{EmployeeID: 2, Type: models.AbsenceTypeSick, StartDate: models.NewDate(2026, 7, 1), EndDate: models.NewDate(2026, 7, 31), Scope: 1, Status: models.AbsenceStatusPending}
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(c))
	require.NoError(t, repo.Create(other))

	found, err := repo.GetOverlapping(1, models.NewDate(2026, 7, 10), models.NewDate(2026, 7, 21), 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	found, err = repo.GetOverlapping(1, models.NewDate(2026, 7, 5), models.NewDate(2026, 7, 6), a.ID)
	require.NoError(t, err)
	assert.Empty(t, found)

	approved, err := repo.GetApprovedInRange(1, models.NewDate(2026, 7, 1), models.NewDate(2026, 7, 31))
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	byYear, err := repo.GetByTypeAndYear(1, models.AbsenceTypeVacation, 2026)
	require.NoError(t, err)
	assert.Len(t, byYear, 2)
}

func TestTimeEntryCountByMonth(t *testing.T) {
	repo, err := NewGormTimeEntryRepository(newTestDB(t))
	require.NoError(t, err)

	for _, e := range []*models.TimeEntry{
		{EmployeeID: 1, Date: models.NewDate(2026, 3, 2), StartTime: "08:00", EndTime: "16:00", Status: models.EntryStatusApproved},
		{EmployeeID: 1, Date: models.NewDate(2026, 3, 31), StartTime: "08:00", EndTime: "16:00", Status: models.EntryStatusSubmitted},
		{EmployeeID: 1, Date: models.NewDate(2026, 4, 1), StartTime: "08:00", EndTime: "16:00", Status: models.EntryStatusApproved},
	} {
		require.NoError(t, repo.Create(e))
	}

	total, approved, err := repo.CountByEmployeeAndMonth(1, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), approved)

	entries, err := repo.GetByEmployeeAndMonth(1, 2026, 4)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Date.Equal(models.NewDate(2026, 4, 1)))
}

func TestArchiveJobCreateIfNoActive(t *testing.T) {
	repo, err := NewGormArchiveJobRepository(newTestDB(t))
	require.NoError(t, err)

	first, created, err := repo.CreateIfNoActive(&models.ArchiveJob{EmployeeID: 1, Year: 2026, Month: 3, Status: models.ArchiveStatusPending})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := repo.CreateIfNoActive(&models.ArchiveJob{EmployeeID: 1, Year: 2026, Month: 3, Status: models.ArchiveStatusPending})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	now := time.Now()
	first.Status = models.ArchiveStatusCompleted
	old := now.AddDate(0, 0, -31)
	first.ProcessedAt = &old
	require.NoError(t, repo.Update(first))

	_, created, err = repo.CreateIfNoActive(&models.ArchiveJob{EmployeeID: 1, Year: 2026, Month: 3, Status: models.ArchiveStatusPending})
	require.NoError(t, err)
	assert.True(t, created)

	pending, err := repo.GetPending(10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	purged, err := repo.DeleteCompletedBefore(now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestSettingUpsert(t *testing.T) {
	repo, err := NewGormSettingRepository(newTestDB(t))
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(&models.Setting{Key: "max_daily_hours", Value: "10", Type: models.SettingTypeFloat}))
	require.NoError(t, repo.Upsert(&models.Setting{Key: "max_daily_hours", Value: "12", Type: models.SettingTypeFloat}))

	s, err := repo.Get("max_daily_hours")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "12", s.Value)

	missing, err := repo.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAbsenceByTypeAndYearIncludesSpanningAbsences(t *testing.T) {
	repo, err := NewGormAbsenceRepository(newTestDB(t))
	require.NoError(t, err)

	spanning := &models.Absence{EmployeeID: 1, Type: models.AbsenceTypeVacation, StartDate: models.NewDate(2025, 12, 29), EndDate: models.NewDate(2026, 1, 2), Scope: 1, Status: models.AbsenceStatusApproved}
	require.NoError(t, repo.Create(spanning))

	for _, year := range []int{2025, 2026} {
		found, err := repo.GetByTypeAndYear(1, models.AbsenceTypeVacation, year)
		require.NoError(t, err)
		require.Len(t, found, 1, year)
		assert.Equal(t, spanning.ID, found[0].ID)
	}

	found, err := repo.GetByTypeAndYear(1, models.AbsenceTypeVacation, 2027)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestArchiveJobReclaimProcessing(t *testing.T) {
	repo, err := NewGormArchiveJobRepository(newTestDB(t))
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	stale := now.Add(-time.Hour)
	fresh := now

	jobs := []*models.ArchiveJob{
		{EmployeeID: 1, Year: 2026, Month: 1, Status: models.ArchiveStatusProcessing, SubmittedAt: &stale},
		{EmployeeID: 1, Year: 2026, Month: 2, Status: models.ArchiveStatusProcessing, SubmittedAt: &fresh},
		{EmployeeID: 1, Year: 2026, Month: 3, Status: models.ArchiveStatusProcessing},
	}
	for _, j := range jobs {
		_, created, err := repo.CreateIfNoActive(j)
		require.NoError(t, err)
		require.True(t, created)
	}

	reclaimed, err := repo.ReclaimProcessing(now.Add(-15 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), reclaimed)

	pending, err := repo.GetPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.ElementsMatch(t, []int{1, 3}, []int{pending[0].Month, pending[1].Month})
}
