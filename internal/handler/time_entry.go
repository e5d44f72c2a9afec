package handler

import (
	"fmt"
	"strings"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"
	"work-time-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// entryInput собирает ввод для сервиса; без перерыва подставляется минимальный
func (h *Handler) entryInput(employee *models.Employee, fields []string) (service.TimeEntryInput, error) {
	args, err := parseEntryArgs(fields, h.now())
	if err != nil {
		return service.TimeEntryInput{}, errs.Invalid("args", err.Error())
	}

	breakMinutes := args.BreakMinutes
	if !args.BreakSet {
		suggested, err := h.entries.SuggestBreak(args.StartTime, args.EndTime)
		if err != nil {
			return service.TimeEntryInput{}, err
		}
		breakMinutes = suggested
	}

	return service.TimeEntryInput{
		EmployeeID:   employee.ID,
		Date:         args.Date,
		StartTime:    args.StartTime,
		EndTime:      args.EndTime,
		BreakMinutes: breakMinutes,
		Note:         args.Note,
	}, nil
}

// ownEntry загружает запись и проверяет, что она принадлежит отправителю
func (h *Handler) ownEntry(chatID int64, employee *models.Employee, rawID string) (*models.TimeEntry, bool) {
	id, err := parseID(rawID)
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return nil, false
	}

	entry, err := h.entries.GetByID(id)
	if err != nil {
		h.replyError(chatID, "Ошибка получения записи", err)
		return nil, false
	}
	if entry.EmployeeID != employee.ID && !employee.IsAdmin() {
		h.send(chatID, "⛔ Это не ваша запись.")
		return nil, false
	}
	return entry, true
}

func (h *Handler) createEntry(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	input, err := h.entryInput(employee, strings.Fields(args))
	if err != nil {
		h.replyError(chatID, "Запись не создана", err)
		return
	}

	entry, err := h.entries.Create(employee.ID, input)
	if err != nil {
		h.replyError(chatID, "Запись не создана", err)
		return
	}

	h.send(chatID, fmt.Sprintf("✅ Запись создана (черновик):\n%s\n\nОтправьте на согласование: /submit %d", entry.FormatLine(), entry.ID))
}

func (h *Handler) editEntry(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) < 3 {
		h.send(chatID, "❌ Формат: /editentry ID [дата] начало конец [перерыв] [заметка]")
		return
	}

	entry, ok := h.ownEntry(chatID, employee, fields[0])
	if !ok {
		return
	}

	input, err := h.entryInput(employee, fields[1:])
	if err != nil {
		h.replyError(chatID, "Запись не изменена", err)
		return
	}

	updated, err := h.entries.Update(employee.ID, entry.ID, input)
	if err != nil {
		h.replyError(chatID, "Запись не изменена", err)
		return
	}
	h.send(chatID, "✅ Запись обновлена:\n"+updated.FormatLine())
}

func (h *Handler) deleteEntry(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	entry, ok := h.ownEntry(chatID, employee, args)
	if !ok {
		return
	}

	if err := h.entries.Delete(employee.ID, entry.ID); err != nil {
		h.replyError(chatID, "Запись не удалена", err)
		return
	}
	h.send(chatID, fmt.Sprintf("🗑️ Запись #%d удалена.", entry.ID))
}

func (h *Handler) submitEntry(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	entry, ok := h.ownEntry(chatID, employee, args)
	if !ok {
		return
	}

	submitted, err := h.entries.Submit(employee.ID, entry.ID)
	if err != nil {
		h.replyError(chatID, "Запись не отправлена", err)
		return
	}
	h.send(chatID, "📨 Запись отправлена на согласование:\n"+submitted.FormatLine())
}

func (h *Handler) submitMonth(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	year, month, err := parseYearMonth(args, h.now())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	count, err := h.entries.SubmitMonth(employee.ID, employee.ID, year, month)
	if err != nil {
		h.replyError(chatID, "Месяц не отправлен", err)
		return
	}
	if count == 0 {
		h.send(chatID, fmt.Sprintf("📭 За %s %d нет черновиков для отправки.", service.MonthName(month), year))
		return
	}
	h.send(chatID, fmt.Sprintf("📨 Отправлено на согласование записей: %d (%s %d).", count, service.MonthName(month), year))
}

func (h *Handler) showEntries(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	year, month, err := parseYearMonth(args, h.now())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	entries, err := h.entries.GetMonthEntries(employee.ID, year, month)
	if err != nil {
		h.replyError(chatID, "Ошибка получения записей", err)
		return
	}
	if len(entries) == 0 {
		h.send(chatID, fmt.Sprintf("📭 Записей за %s %d нет.", service.MonthName(month), year))
		return
	}

	total := 0
	var b strings.Builder
	fmt.Fprintf(&b, "🗓️ Записи за %s %d:\n\n", service.MonthName(month), year)
	for _, e := range entries {
		b.WriteString(e.FormatLine() + "\n")
		total += e.WorkMinutes
	}
	fmt.Fprintf(&b, "\n⏰ Всего: %s", models.FormatMinutes(total))

	approved, err := h.entries.IsMonthApproved(employee.ID, year, month)
	if err == nil && approved {
		b.WriteString("\n✅ Месяц полностью утвержден")
	}
	h.send(chatID, b.String())
}

func (h *Handler) breakHint(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	fields := strings.Fields(args)
	if len(fields) != 2 {
		h.send(chatID, "❌ Формат: /breakhint начало конец\nПример: /breakhint 08:00 17:30")
		return
	}

	minutes, err := h.entries.SuggestBreak(fields[0], fields[1])
	if err != nil {
		h.replyError(chatID, "Неверное время", err)
		return
	}
	if minutes == 0 {
		h.send(chatID, "☕ Перерыв не обязателен.")
		return
	}
	h.send(chatID, fmt.Sprintf("☕ Минимальный перерыв: %d мин.", minutes))
}
