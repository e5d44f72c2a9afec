package holidays

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CalendarJSON - формат файла производственного календаря
type CalendarJSON struct {
	Year   int             `json:"year"`
	Months []MonthHolidays `json:"months"`
}

type MonthHolidays struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

// ImportedDay - нерабочий или сокращенный будний день из календаря
type ImportedDay struct {
	Date  time.Time
	Scope float64
}

// ParseCalendarJSON читает файл календаря.
// День с суффиксом "*" - сокращенный (scope 0.5), "+" - перенесенный выходной.
// Суббота и воскресенье пропускаются, они и так не рабочие.
func ParseCalendarJSON(filePath string) (int, []ImportedDay, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	return ParseCalendar(data)
}

func ParseCalendar(data []byte) (int, []ImportedDay, error) {
	var cal CalendarJSON
	if err := json.Unmarshal(data, &cal); err != nil {
		return 0, nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if cal.Year < 1583 {
		return 0, nil, fmt.Errorf("invalid calendar year %d", cal.Year)
	}

	days := []ImportedDay{}
	for _, monthData := range cal.Months {
		if monthData.Month < 1 || monthData.Month > 12 {
			return 0, nil, fmt.Errorf("invalid month %d", monthData.Month)
		}

		for _, dayStr := range strings.Split(monthData.Days, ",") {
			dayStr = strings.TrimSpace(dayStr)
			scope := 1.0
			if strings.HasSuffix(dayStr, "*") {
				scope = 0.5
			}
			dayStr = strings.TrimSuffix(strings.TrimSuffix(dayStr, "*"), "+")
			if dayStr == "" {
				continue
			}

			day, err := strconv.Atoi(dayStr)
			if err != nil {
				return 0, nil, fmt.Errorf("failed to parse day '%s' in month %d: %w",
					dayStr, monthData.Month, err)
			}

			date := time.Date(cal.Year, time.Month(monthData.Month), day, 0, 0, 0, 0, time.UTC)
			if date.Month() != time.Month(monthData.Month) {
				return 0, nil, fmt.Errorf("day %d does not exist in month %d", day, monthData.Month)
			}
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}

			days = append(days, ImportedDay{Date: date, Scope: scope})
		}
	}

	return cal.Year, days, nil
}
