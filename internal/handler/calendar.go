package handler

import (
	"fmt"
	"strconv"
	"strings"
	"work-time-bot/internal/models"
	"work-time-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// yearAndRegion разбирает "[год] [регион]" с регионом сотрудника по умолчанию
func (h *Handler) yearAndRegion(args, defaultRegion string) (int, string, error) {
	year, region := h.now().Year(), defaultRegion
	for _, f := range strings.Fields(args) {
		if y, err := strconv.Atoi(f); err == nil {
			year = y
			continue
		}
		region = strings.ToUpper(f)
	}
	if year < 2000 || year > 2100 {
		return 0, "", fmt.Errorf("неверный год %d", year)
	}
	return year, region, nil
}

// checkDay сообщает, рабочий ли день в регионе сотрудника
func (h *Handler) checkDay(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	date := h.now()
	if strings.TrimSpace(args) != "" {
		parsed, err := parseDate(args, h.now())
		if err != nil {
			h.send(chatID, "❌ "+err.Error())
			return
		}
		date = parsed
	}

	holiday, err := h.calendar.HolidayOn(date, employee.Region)
	if err != nil {
		h.replyError(chatID, "Ошибка проверки дня", err)
		return
	}
	share := service.CountWorkingDays(date, date, nil)
	if holiday != nil {
		share = service.CountWorkingDays(date, date, []models.Holiday{*holiday})
	}

	response := fmt.Sprintf("📅 Дата: %s (%s)\n", date.Format("02.01.2006"), employee.Region)
	switch {
	case holiday != nil && share == 0:
		response += "🎉 Праздник: " + holiday.Name
	case holiday != nil:
		response += fmt.Sprintf("🌗 Сокращенный день: %s, рабочая доля %.1f", holiday.Name, share)
	case share == 0:
		response += "❌ Выходной день"
	default:
		response += "✅ Рабочий день"
	}
	h.send(chatID, response)
}

func (h *Handler) showHolidays(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	year, region, err := h.yearAndRegion(args, employee.Region)
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	list, err := h.calendar.HolidaysForYear(year, region)
	if err != nil {
		h.replyError(chatID, "Ошибка получения праздников", err)
		return
	}
	h.send(chatID, service.FormatHolidays(year, region, list))
}

func (h *Handler) generateHolidays(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	admin, ok := h.requireAdmin(chatID)
	if !ok {
		return
	}

	year, region, err := h.yearAndRegion(args, admin.Region)
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	list, err := h.calendar.Generate(year, region)
	if err != nil {
		h.replyError(chatID, "Праздники не сгенерированы", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Сгенерировано праздников: %d\n\n%s", len(list), service.FormatHolidays(year, region, list)))
}

// addHoliday: /addholiday дата доля регион название
func (h *Handler) addHoliday(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) < 4 {
		h.send(chatID, "❌ Формат: /addholiday дата доля регион название\nПример: /addholiday 24.12.2026 0.5 BY Heiligabend")
		return
	}

	date, err := parseDate(fields[0], h.now())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	scope, err := parseScope(fields[1])
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	holiday, err := h.calendar.AddManual(date, strings.ToUpper(fields[2]), strings.Join(fields[3:], " "), scope)
	if err != nil {
		h.replyError(chatID, "Праздник не сохранен", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Праздник #%d сохранен: %s %s (%s)", holiday.ID, holiday.Date.Format("02.01.2006"), holiday.Name, holiday.Region))
}

func (h *Handler) deleteHoliday(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	id, err := parseID(args)
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	if err := h.calendar.Delete(id); err != nil {
		h.replyError(chatID, "Праздник не удален", err)
		return
	}
	h.send(chatID, fmt.Sprintf("🗑️ Праздник #%d удален.", id))
}
