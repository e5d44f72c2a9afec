package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"work-time-bot/internal/models"
)

var dateFormats = []string{
	"02.01.2006",
	"02-01-2006",
	"2006-01-02",
	"02.01",
	"02-01",
}

// parseDate парсит дату; без года берется год из now
func parseDate(dateStr string, now time.Time) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	switch strings.ToLower(dateStr) {
	case "сегодня", "today":
		return models.DateOnly(now), nil
	case "вчера", "yesterday":
		return models.DateOnly(now).AddDate(0, 0, -1), nil
	}

	for _, format := range dateFormats {
		t, err := time.Parse(format, dateStr)
		if err != nil {
			continue
		}
		if !strings.Contains(format, "2006") {
			t = models.NewDate(now.Year(), t.Month(), t.Day())
		}
		return models.DateOnly(t), nil
	}

	return time.Time{}, fmt.Errorf("неверный формат даты %q. Используйте ДД.ММ.ГГГГ или ДД.ММ", dateStr)
}

// parseYearMonth разбирает "", "месяц" или "год месяц"
func parseYearMonth(args string, now time.Time) (int, int, error) {
	parts := strings.Fields(args)
	year, month := now.Year(), int(now.Month())

	switch len(parts) {
	case 0:
		return year, month, nil
	case 1:
		m, err := strconv.Atoi(parts[0])
		if err != nil || m < 1 || m > 12 {
			return 0, 0, errors.New("неверный месяц. Используйте число от 1 до 12")
		}
		return year, m, nil
	case 2:
		y, err := strconv.Atoi(parts[0])
		if err != nil || y < 2000 || y > 2100 {
			return 0, 0, errors.New("неверный год. Используйте год между 2000 и 2100")
		}
		m, err := strconv.Atoi(parts[1])
		if err != nil || m < 1 || m > 12 {
			return 0, 0, errors.New("неверный месяц. Используйте число от 1 до 12")
		}
		return y, m, nil
	default:
		return 0, 0, errors.New("неверный формат. Используйте [месяц] или [год месяц]")
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("неверный ID %q", s)
	}
	return uint(id), nil
}

// parseScope принимает 1, 0.5, 0,5 или 50%
func parseScope(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("неверная доля дня %q", s)
	}
	if percent {
		v /= 100
	}
	return v, nil
}

func isClock(s string) bool {
	_, err := models.ParseClock(s)
	return err == nil
}

// entryArgs - разобранные аргументы /entry и /editentry
type entryArgs struct {
	Date         time.Time
	StartTime    string
	EndTime      string
	BreakMinutes int
	BreakSet     bool
	Note         string
}

// parseEntryArgs разбирает "[дата] ЧЧ:ММ ЧЧ:ММ [перерыв] [заметка]"
func parseEntryArgs(fields []string, now time.Time) (*entryArgs, error) {
	if len(fields) < 2 {
		return nil, errors.New("укажите время начала и окончания")
	}

	result := &entryArgs{Date: models.DateOnly(now)}
	if !isClock(fields[0]) {
		date, err := parseDate(fields[0], now)
		if err != nil {
			return nil, err
		}
		result.Date = date
		fields = fields[1:]
	}

	if len(fields) < 2 || !isClock(fields[0]) || !isClock(fields[1]) {
		return nil, errors.New("время начала и окончания указывается как ЧЧ:ММ")
	}
	result.StartTime, result.EndTime = fields[0], fields[1]
	fields = fields[2:]

	if len(fields) > 0 {
		if b, err := strconv.Atoi(fields[0]); err == nil {
			result.BreakMinutes = b
			result.BreakSet = true
			fields = fields[1:]
		}
	}
	result.Note = strings.Join(fields, " ")
	return result, nil
}

// absenceArgs - разобранные аргументы /absence и /editabsence
type absenceArgs struct {
	Type      models.AbsenceType
	StartDate time.Time
	EndDate   time.Time
	Scope     float64
	Note      string
}

// parseAbsenceArgs разбирает "тип дата_начала [дата_окончания] [доля] [заметка]"
func parseAbsenceArgs(fields []string, now time.Time) (*absenceArgs, error) {
	if len(fields) < 2 {
		return nil, errors.New("укажите тип отсутствия и дату начала")
	}

	result := &absenceArgs{Type: models.AbsenceType(strings.ToLower(fields[0])), Scope: 1}
	start, err := parseDate(fields[1], now)
	if err != nil {
		return nil, err
	}
	result.StartDate, result.EndDate = start, start
	fields = fields[2:]

	if len(fields) > 0 {
		if end, err := parseDate(fields[0], now); err == nil {
			result.EndDate = end
			fields = fields[1:]
		}
	}
	if len(fields) > 0 {
		if scope, err := parseScope(fields[0]); err == nil {
			result.Scope = scope
			fields = fields[1:]
		}
	}
	result.Note = strings.Join(fields, " ")
	return result, nil
}
