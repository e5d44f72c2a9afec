package service

import (
	"time"
	"work-time-bot/internal/models"
)

// HolidayProvider - источник праздников для подсчета рабочих дней
type HolidayProvider interface {
	HolidaysInRange(start, end time.Time, region string) ([]models.Holiday, error)
}

// CountWorkingDays считает рабочие дни в [start, end] включительно.
// Суббота и воскресенье дают 0, праздник дает 1 - scope (полный 0, сокращенный 0.5),
// обычный будний день дает 1. При нескольких праздниках на дату берется наибольший scope.
func CountWorkingDays(start, end time.Time, holidays []models.Holiday) float64 {
	start, end = models.DateOnly(start), models.DateOnly(end)
	if end.Before(start) {
		return 0
	}

	closed := make(map[time.Time]float64, len(holidays))
	for _, h := range holidays {
		d := models.DateOnly(h.Date)
		if h.Scope > closed[d] {
			closed[d] = h.Scope
		}
	}

	total := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		scope := closed[d]
		if scope >= 1 {
			continue
		}
		total += 1 - scope
	}
	return total
}

type WorkingDayCounter struct {
	holidays HolidayProvider
}

func NewWorkingDayCounter(holidays HolidayProvider) *WorkingDayCounter {
	return &WorkingDayCounter{holidays: holidays}
}

func (c *WorkingDayCounter) Count(start, end time.Time, region string) (float64, error) {
	if models.DateOnly(end).Before(models.DateOnly(start)) {
		return 0, nil
	}
	list, err := c.holidays.HolidaysInRange(start, end, region)
	if err != nil {
		return 0, err
	}
	return CountWorkingDays(start, end, list), nil
}
