package service

import (
	"testing"
	"time"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minutesEntries(date time.Time, total, per int) []*models.TimeEntry {
	var entries []*models.TimeEntry
	for total > 0 {
		m := per
		if total < per {
			m = total
		}
		entries = append(entries, &models.TimeEntry{Date: date, WorkMinutes: m})
		total -= m
		date = date.AddDate(0, 0, 1)
	}
	return entries
}

func TestComputeMonthlyStatisticsExample(t *testing.T) {
	// февраль 2027: 20 рабочих дней, к 19 февраля прошло 15
	stats := ComputeMonthlyStatistics(StatisticsInput{
		WeeklyHours: 40,
		Year:        2027,
		Month:       2,
		Today:       models.NewDate(2027, 2, 19),
		Entries:     minutesEntries(models.NewDate(2027, 2, 1), 6000, 500),
		Absences: []*models.Absence{{
			Type:      models.AbsenceTypeVacation,
			StartDate: models.NewDate(2027, 2, 3),
			EndDate:   models.NewDate(2027, 2, 3),
			Scope:     1,
			Status:    models.AbsenceStatusApproved,
		}},
	})

	assert.False(t, stats.IsFuture)
	assert.Equal(t, 20.0, stats.WorkingDaysMonth)
	assert.Equal(t, 15.0, stats.WorkingDaysUntilToday)
	assert.Equal(t, 480.0, stats.DailyMinutes)
	assert.Equal(t, 9600, stats.MonthlyTargetMinutes)
	assert.Equal(t, 7200, stats.ProportionalTargetMinutes)
	assert.Equal(t, 7200, stats.AdjustedProportionalTargetMinutes)
	assert.Equal(t, 6000, stats.WorkedMinutes)
	assert.Equal(t, 480, stats.PaidAbsenceMinutes)
	assert.Equal(t, 6480, stats.ActualMinutes)
	assert.Equal(t, -720, stats.OvertimeMinutes)
	assert.Equal(t, -12.0, stats.Hours().Overtime)
}

func TestComputeMonthlyStatisticsFutureMonth(t *testing.T) {
	stats := ComputeMonthlyStatistics(StatisticsInput{
		WeeklyHours: 40,
		Year:        2027,
		Month:       3,
		Today:       models.NewDate(2027, 2, 19),
		Absences: []*models.Absence{{
			Type:      models.AbsenceTypeVacation,
			StartDate: models.NewDate(2027, 3, 1),
			EndDate:   models.NewDate(2027, 3, 5),
			Scope:     1,
			Status:    models.AbsenceStatusApproved,
		}},
	})

	assert.True(t, stats.IsFuture)
	assert.Equal(t, 23.0, stats.WorkingDaysMonth)
	assert.Equal(t, 5.0, stats.PaidAbsenceDaysMonth)
	assert.Zero(t, stats.PaidAbsenceDaysUntilToday)
	assert.Zero(t, stats.DailyMinutes)
	assert.Zero(t, stats.MonthlyTargetMinutes)
	assert.Zero(t, stats.ActualMinutes)
	assert.Zero(t, stats.OvertimeMinutes)
	assert.Contains(t, FormatStatistics(stats), "еще не начался")
}

func TestComputeMonthlyStatisticsUnpaidAbsence(t *testing.T) {
	stats := ComputeMonthlyStatistics(StatisticsInput{
		WeeklyHours: 40,
		Year:        2027,
		Month:       2,
		Today:       models.NewDate(2027, 2, 19),
		Absences: []*models.Absence{
			{
				Type:      models.AbsenceTypeUnpaid,
				StartDate: models.NewDate(2027, 2, 18),
				EndDate:   models.NewDate(2027, 2, 26),
				Scope:     1,
				Status:    models.AbsenceStatusApproved,
			},
			{
				// не утверждено, не учитывается
				Type:      models.AbsenceTypeVacation,
				StartDate: models.NewDate(2027, 2, 1),
				EndDate:   models.NewDate(2027, 2, 5),
				Scope:     1,
				Status:    models.AbsenceStatusPending,
			},
		},
	})

	assert.Equal(t, 7.0, stats.UnpaidAbsenceDaysMonth)
	assert.Equal(t, 2.0, stats.UnpaidAbsenceDaysUntilToday)
	assert.Equal(t, 9600-7*480, stats.AdjustedTargetMinutes)
	assert.Equal(t, 7200-2*480, stats.AdjustedProportionalTargetMinutes)
	assert.Zero(t, stats.PaidAbsenceDaysMonth)
	assert.Equal(t, -(7200 - 2*480), stats.OvertimeMinutes)
}

func TestComputeMonthlyStatisticsHalfDays(t *testing.T) {
	holidays := []models.Holiday{
		{Date: models.NewDate(2026, 12, 24), Scope: 0.5},
		{Date: models.NewDate(2026, 12, 25), Scope: 1},
		{Date: models.NewDate(2026, 12, 26), Scope: 1},
	}
	stats := ComputeMonthlyStatistics(StatisticsInput{
		WeeklyHours: 40,
		Year:        2026,
		Month:       12,
		Today:       models.NewDate(2027, 1, 10),
		Holidays:    holidays,
		Absences: []*models.Absence{{
			Type:      models.AbsenceTypeVacation,
			StartDate: models.NewDate(2026, 12, 31),
			EndDate:   models.NewDate(2026, 12, 31),
			Scope:     0.5,
			Status:    models.AbsenceStatusApproved,
		}},
	})

	assert.Equal(t, 2, stats.HolidayCount)
	assert.Equal(t, 21.5, stats.WorkingDaysMonth)
	assert.Equal(t, 21.5, stats.WorkingDaysUntilToday)
	assert.Equal(t, 10320, stats.MonthlyTargetMinutes)
	assert.Equal(t, stats.MonthlyTargetMinutes, stats.ProportionalTargetMinutes)
	assert.Equal(t, 0.5, stats.PaidAbsenceDaysMonth)
	assert.Equal(t, 240, stats.PaidAbsenceMinutes)
}

func TestComputeMonthlyStatisticsPartTime(t *testing.T) {
	stats := ComputeMonthlyStatistics(StatisticsInput{
		WeeklyHours: 38.5,
		Year:        2027,
		Month:       2,
		Today:       models.NewDate(2027, 3, 1),
		Entries:     []*models.TimeEntry{{Date: models.NewDate(2027, 2, 1), WorkMinutes: 500}},
	})

	assert.Equal(t, 462.0, stats.DailyMinutes)
	assert.Equal(t, 20*462, stats.MonthlyTargetMinutes)
	assert.Equal(t, 154.0, stats.Hours().MonthlyTarget)
	assert.Equal(t, 8.33, MinutesToHours(500))
}

func TestMonthlyStatServiceCompute(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	employee := env.newEmployee(t, 1, "BY")

	env.approvedEntry(t, employee.ID, models.NewDate(2026, 3, 2))
	_, err := env.entries.Create(employee.ID, entryInput(employee.ID, 3, "08:00", "12:00", 0))
	require.NoError(t, err)

	absence, err := env.absences.Create(employee.ID, absenceInput(employee.ID, models.AbsenceTypeSick,
		models.NewDate(2026, 3, 4), models.NewDate(2026, 3, 4), 1))
	require.NoError(t, err)
	_, err = env.absences.Approve(99, absence.ID)
	require.NoError(t, err)

	// чужое утвержденное отсутствие не должно попасть в расчет
	other := env.newEmployee(t, 2, "BY")
	foreign, err := env.absences.Create(other.ID, absenceInput(other.ID, models.AbsenceTypeSick,
		models.NewDate(2026, 3, 5), models.NewDate(2026, 3, 5), 1))
	require.NoError(t, err)
	_, err = env.absences.Approve(99, foreign.ID)
	require.NoError(t, err)

	data, err := env.stats.Compute(employee.ID, 2026, 3)
	require.NoError(t, err)

	stats := data.Statistics
	assert.Len(t, data.Entries, 2)
	assert.Len(t, data.Absences, 1)
	assert.Equal(t, 22.0, stats.WorkingDaysMonth)
	assert.Equal(t, 13.0, stats.WorkingDaysUntilToday)
	assert.Equal(t, 720, stats.WorkedMinutes)
	assert.Equal(t, 480, stats.PaidAbsenceMinutes)
	assert.Equal(t, 1200-13*480, stats.OvertimeMinutes)
	assert.Contains(t, FormatStatistics(stats), "Март 2026")

	_, err = env.stats.Compute(employee.ID, 2026, 13)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	_, err = env.stats.Compute(404, 2026, 3)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestMonthlyStatServiceComputeGeneratesYearAndRegion(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2027, 1, 29))
	employee := env.newEmployee(t, 1, "BY")

	// при старте сгенерирован только прошлый год
	_, err := env.calendar.Generate(2026, "BY")
	require.NoError(t, err)

	// январь 2027: 21 будний день, Neujahr и Heilige Drei Könige в Баварии
	data, err := env.stats.Compute(employee.ID, 2027, 1)
	require.NoError(t, err)
	assert.Equal(t, 19.0, data.Statistics.WorkingDaysMonth)
	assert.Equal(t, 2, data.Statistics.HolidayCount)

	// после перевода в Берлин остается только Neujahr
	employee.Region = "BE"
	require.NoError(t, env.employeeRepo.Update(employee))

	data, err = env.stats.Compute(employee.ID, 2027, 1)
	require.NoError(t, err)
	assert.Equal(t, 20.0, data.Statistics.WorkingDaysMonth)
	assert.Equal(t, 1, data.Statistics.HolidayCount)

	days, err := env.counter.Count(models.NewDate(2027, 1, 4), models.NewDate(2027, 1, 8), "BY")
	require.NoError(t, err)
	assert.Equal(t, 4.0, days)
}
