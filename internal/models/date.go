package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateOnly отбрасывает время и часовой пояс, все календарные расчеты идут в UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MonthBounds возвращает первый и последний день месяца
func MonthBounds(year, month int) (time.Time, time.Time) {
	start := NewDate(year, time.Month(month), 1)
	return start, start.AddDate(0, 1, -1)
}

// ParseClock разбирает "HH:MM" в минуты от начала суток
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("неверный формат времени %q, ожидается ЧЧ:ММ", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("неверный час в %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("неверные минуты в %q", s)
	}
	return h*60 + m, nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatMinutes форматирует минуты как "7ч 30м", отрицательные значения со знаком
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%s%dч", sign, h)
	}
	return fmt.Sprintf("%s%dч %dм", sign, h, m)
}
