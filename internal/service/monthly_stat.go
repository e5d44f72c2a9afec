package service

import (
	"fmt"
	"strings"
	"time"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"
	"work-time-bot/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	minutesPerWeeklyHour = decimal.NewFromInt(12) // часы в неделю / 5 дней * 60 минут
	sixty                = decimal.NewFromInt(60)
)

// StatisticsInput - все данные, необходимые для расчета месяца
type StatisticsInput struct {
	WeeklyHours float64
	Year        int
	Month       int
	Today       time.Time
	Entries     []*models.TimeEntry
	Absences    []*models.Absence // учитываются только утвержденные
	Holidays    []models.Holiday  // праздники региона сотрудника за месяц
}

type MonthlyStatistics struct {
	Year     int
	Month    int
	IsFuture bool

	WorkingDaysMonth      float64
	WorkingDaysUntilToday float64
	HolidayCount          int

	PaidAbsenceDaysMonth        float64
	PaidAbsenceDaysUntilToday   float64
	UnpaidAbsenceDaysMonth      float64
	UnpaidAbsenceDaysUntilToday float64

	DailyMinutes float64

	MonthlyTargetMinutes              int
	ProportionalTargetMinutes         int
	AdjustedTargetMinutes             int
	AdjustedProportionalTargetMinutes int

	WorkedMinutes      int
	PaidAbsenceMinutes int
	ActualMinutes      int
	OvertimeMinutes    int
}

// MonthlyHours - те же показатели в часах, округленные до 2 знаков
type MonthlyHours struct {
	MonthlyTarget              float64
	ProportionalTarget         float64
	AdjustedTarget             float64
	AdjustedProportionalTarget float64
	Worked                     float64
	PaidAbsence                float64
	Actual                     float64
	Overtime                   float64
}

func MinutesToHours(minutes int) float64 {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2).InexactFloat64()
}

func (m *MonthlyStatistics) Hours() MonthlyHours {
	return MonthlyHours{
		MonthlyTarget:              MinutesToHours(m.MonthlyTargetMinutes),
		ProportionalTarget:         MinutesToHours(m.ProportionalTargetMinutes),
		AdjustedTarget:             MinutesToHours(m.AdjustedTargetMinutes),
		AdjustedProportionalTarget: MinutesToHours(m.AdjustedProportionalTargetMinutes),
		Worked:                     MinutesToHours(m.WorkedMinutes),
		PaidAbsence:                MinutesToHours(m.PaidAbsenceMinutes),
		Actual:                     MinutesToHours(m.ActualMinutes),
		Overtime:                   MinutesToHours(m.OvertimeMinutes),
	}
}

func daysToMinutes(days float64, daily decimal.Decimal) int {
	return int(decimal.NewFromFloat(days).Mul(daily).Round(0).IntPart())
}

// clipDays считает рабочие дни отсутствия внутри [from, to] с учетом доли дня
func clipDays(a *models.Absence, from, to time.Time, holidays []models.Holiday) float64 {
	start := models.DateOnly(a.StartDate)
	end := models.DateOnly(a.EndDate)
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	if end.Before(start) {
		return 0
	}
	return CountWorkingDays(start, end, holidays) * a.Scope
}

// ComputeMonthlyStatistics - единый алгоритм расчета месяца для отчета и архива.
// Переработка всегда считается от пропорциональной (прошедшей) части нормы.
func ComputeMonthlyStatistics(in StatisticsInput) *MonthlyStatistics {
	monthStart, monthEnd := models.MonthBounds(in.Year, in.Month)
	today := models.DateOnly(in.Today)

	stats := &MonthlyStatistics{
		Year:             in.Year,
		Month:            in.Month,
		WorkingDaysMonth: CountWorkingDays(monthStart, monthEnd, in.Holidays),
	}

	for _, h := range in.Holidays {
		d := models.DateOnly(h.Date)
		if d.Before(monthStart) || d.After(monthEnd) {
			continue
		}
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			stats.HolidayCount++
		}
	}

	untilToday := monthEnd
	if today.Before(untilToday) {
		untilToday = today
	}

	for _, a := range in.Absences {
		if a.Status != models.AbsenceStatusApproved {
			continue
		}
		month := clipDays(a, monthStart, monthEnd, in.Holidays)
		elapsed := clipDays(a, monthStart, untilToday, in.Holidays)
		if a.Type.IsPaid() {
			stats.PaidAbsenceDaysMonth += month
			stats.PaidAbsenceDaysUntilToday += elapsed
		} else {
			stats.UnpaidAbsenceDaysMonth += month
			stats.UnpaidAbsenceDaysUntilToday += elapsed
		}
	}

	if monthStart.After(today) {
		stats.IsFuture = true
		stats.PaidAbsenceDaysUntilToday = 0
		stats.UnpaidAbsenceDaysUntilToday = 0
		return stats
	}

	daily := decimal.NewFromFloat(in.WeeklyHours).Mul(minutesPerWeeklyHour)
	stats.DailyMinutes = daily.InexactFloat64()
	stats.WorkingDaysUntilToday = CountWorkingDays(monthStart, untilToday, in.Holidays)

	stats.MonthlyTargetMinutes = daysToMinutes(stats.WorkingDaysMonth, daily)
	stats.ProportionalTargetMinutes = daysToMinutes(stats.WorkingDaysUntilToday, daily)
	stats.AdjustedTargetMinutes = stats.MonthlyTargetMinutes - daysToMinutes(stats.UnpaidAbsenceDaysMonth, daily)
	stats.AdjustedProportionalTargetMinutes = stats.ProportionalTargetMinutes - daysToMinutes(stats.UnpaidAbsenceDaysUntilToday, daily)

	for _, e := range in.Entries {
		d := models.DateOnly(e.Date)
		if d.Before(monthStart) || d.After(monthEnd) {
			continue
		}
		stats.WorkedMinutes += e.WorkMinutes
	}

	stats.PaidAbsenceMinutes = daysToMinutes(stats.PaidAbsenceDaysUntilToday, daily)
	stats.ActualMinutes = stats.WorkedMinutes + stats.PaidAbsenceMinutes
	stats.OvertimeMinutes = stats.ActualMinutes - stats.AdjustedProportionalTargetMinutes

	return stats
}

// MonthData - загруженные данные месяца вместе с результатом расчета
type MonthData struct {
	Employee   *models.Employee
	Entries    []*models.TimeEntry
	Absences   []*models.Absence
	Holidays   []models.Holiday
	Statistics *MonthlyStatistics
}

type MonthlyStatService struct {
	clock
	employees repository.EmployeeRepository
	entries   repository.TimeEntryRepository
	absences  repository.AbsenceRepository
	calendar  *CalendarService
	logger    *logrus.Logger
}

func NewMonthlyStatService(
	employees repository.EmployeeRepository,
	entries repository.TimeEntryRepository,
	absences repository.AbsenceRepository,
	calendar *CalendarService,
) *MonthlyStatService {
	return &MonthlyStatService{
		employees: employees,
		entries:   entries,
		absences:  absences,
		calendar:  calendar,
		logger:    newLogger(),
	}
}

// Compute загружает данные сотрудника за месяц и считает статистику
func (s *MonthlyStatService) Compute(employeeID uint, year, month int) (*MonthData, error) {
	if month < 1 || month > 12 {
		return nil, errs.Invalid("month", "месяц должен быть от 1 до 12")
	}

	employee, err := s.employees.GetByID(employeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, errs.NotFound("сотрудник", employeeID)
	}

	start, end := models.MonthBounds(year, month)

	entries, err := s.entries.GetByEmployeeAndMonth(employeeID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}
	absences, err := s.absences.GetApprovedInRange(employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load absences: %w", err)
	}
	holidays, err := s.calendar.HolidaysInRange(start, end, employee.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}

	stats := ComputeMonthlyStatistics(StatisticsInput{
		WeeklyHours: employee.WeeklyHours,
		Year:        year,
		Month:       month,
		Today:       s.today(),
		Entries:     entries,
		Absences:    absences,
		Holidays:    holidays,
	})

	s.logger.WithFields(logrus.Fields{
		"employee_id": employeeID,
		"year":        year,
		"month":       month,
		"actual":      stats.ActualMinutes,
		"overtime":    stats.OvertimeMinutes,
	}).Debug("Monthly statistics computed")

	return &MonthData{
		Employee:   employee,
		Entries:    entries,
		Absences:   absences,
		Holidays:   holidays,
		Statistics: stats,
	}, nil
}

var monthNames = []string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

func MonthName(month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d", month)
	}
	return monthNames[month-1]
}

// FormatStatistics форматирует статистику месяца для сообщения
func FormatStatistics(stats *MonthlyStatistics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Статистика за %s %d\n\n", MonthName(stats.Month), stats.Year)
	fmt.Fprintf(&b, "📅 Рабочих дней в месяце: %.1f\n", stats.WorkingDaysMonth)
	fmt.Fprintf(&b, "🎉 Праздников в будни: %d\n", stats.HolidayCount)
	fmt.Fprintf(&b, "🏖️ Оплачиваемых отсутствий: %.1f дн.\n", stats.PaidAbsenceDaysMonth)
	if stats.UnpaidAbsenceDaysMonth > 0 {
		fmt.Fprintf(&b, "💤 Неоплачиваемых отсутствий: %.1f дн.\n", stats.UnpaidAbsenceDaysMonth)
	}

	if stats.IsFuture {
		b.WriteString("\n⏳ Месяц еще не начался, норма и переработка не рассчитываются.")
		return b.String()
	}

	h := stats.Hours()
	fmt.Fprintf(&b, "📆 Прошло рабочих дней: %.1f\n\n", stats.WorkingDaysUntilToday)
	fmt.Fprintf(&b, "🎯 Норма за месяц: %s (%.2f ч)\n", models.FormatMinutes(stats.AdjustedTargetMinutes), h.AdjustedTarget)
	fmt.Fprintf(&b, "🎯 Норма на сегодня: %s (%.2f ч)\n", models.FormatMinutes(stats.AdjustedProportionalTargetMinutes), h.AdjustedProportionalTarget)
	fmt.Fprintf(&b, "⏰ Отработано: %s (%.2f ч)\n", models.FormatMinutes(stats.WorkedMinutes), h.Worked)
	if stats.PaidAbsenceMinutes > 0 {
		fmt.Fprintf(&b, "🏖️ Зачтено отсутствий: %s (%.2f ч)\n", models.FormatMinutes(stats.PaidAbsenceMinutes), h.PaidAbsence)
	}
	fmt.Fprintf(&b, "✅ Фактически: %s (%.2f ч)\n", models.FormatMinutes(stats.ActualMinutes), h.Actual)

	switch {
	case stats.OvertimeMinutes > 0:
		fmt.Fprintf(&b, "📈 Переработка: %s (%.2f ч)", models.FormatMinutes(stats.OvertimeMinutes), h.Overtime)
	case stats.OvertimeMinutes < 0:
		fmt.Fprintf(&b, "📉 Недоработка: %s (%.2f ч)", models.FormatMinutes(-stats.OvertimeMinutes), h.Overtime)
	default:
		b.WriteString("⚖️ Норма выполнена точно")
	}
	return b.String()
}
