package service

import (
	"testing"
	"time"
	"work-time-bot/internal/models"
	"work-time-bot/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db *gorm.DB

	employeeRepo *repository.GormEmployeeRepository
	entryRepo    *repository.GormTimeEntryRepository
	absenceRepo  *repository.GormAbsenceRepository
	holidayRepo  *repository.GormHolidayRepository
	jobRepo      *repository.GormArchiveJobRepository
	auditRepo    *repository.GormAuditRepository

	settings *SettingsService
	audit    *AuditService
	calendar *CalendarService
	counter  *WorkingDayCounter
	entries  *TimeEntryService
	absences *AbsenceService
	stats    *MonthlyStatService

	now time.Time
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	env := &testEnv{db: db, now: now}

	env.employeeRepo, err = repository.NewGormEmployeeRepository(db)
	require.NoError(t, err)
	env.entryRepo, err = repository.NewGormTimeEntryRepository(db)
	require.NoError(t, err)
	env.absenceRepo, err = repository.NewGormAbsenceRepository(db)
	require.NoError(t, err)
	env.holidayRepo, err = repository.NewGormHolidayRepository(db)
	require.NoError(t, err)
	env.jobRepo, err = repository.NewGormArchiveJobRepository(db)
	require.NoError(t, err)
	env.auditRepo, err = repository.NewGormAuditRepository(db)
	require.NoError(t, err)
	settingRepo, err := repository.NewGormSettingRepository(db)
	require.NoError(t, err)

	clockFn := func() time.Time { return env.now }

	env.settings = NewSettingsService(settingRepo, SettingsDefaults{
		MaxDailyHours: 10,
		MinBreak6h:    30,
		MinBreak9h:    45,
		ArchivePath:   t.TempDir(),
	})
	env.audit = NewAuditService(env.auditRepo)
	env.calendar = NewCalendarService(env.holidayRepo)
	env.counter = NewWorkingDayCounter(env.calendar)

	env.entries = NewTimeEntryService(env.entryRepo, env.settings, env.audit)
	env.entries.SetNow(clockFn)

	env.absences = NewAbsenceService(env.absenceRepo, env.employeeRepo, env.counter, env.entries, env.audit)
	env.absences.SetNow(clockFn)

	env.stats = NewMonthlyStatService(env.employeeRepo, env.entryRepo, env.absenceRepo, env.calendar)
	env.stats.SetNow(clockFn)

	return env
}

func (e *testEnv) newEmployee(t *testing.T, chatID int64, region string) *models.Employee {
	t.Helper()
	employee := &models.Employee{
		ChatID:       chatID,
		FirstName:    "Test",
		Role:         models.RoleClient,
		WeeklyHours:  40,
		Region:       region,
		VacationDays: 30,
	}
	require.NoError(t, e.employeeRepo.Create(employee))
	return employee
}

// approvedEntry создает запись и проводит ее через submit/approve
func (e *testEnv) approvedEntry(t *testing.T, employeeID uint, date time.Time) *models.TimeEntry {
	t.Helper()
	entry, err := e.entries.Create(employeeID, TimeEntryInput{
		EmployeeID: employeeID, Date: date, StartTime: "08:00", EndTime: "16:30", BreakMinutes: 30,
	})
	require.NoError(t, err)
	_, err = e.entries.Submit(employeeID, entry.ID)
	require.NoError(t, err)
	entry, err = e.entries.Approve(99, entry.ID)
	require.NoError(t, err)
	return entry
}
