package handler

import (
	"fmt"
	"strconv"
	"strings"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"
	"work-time-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) absenceInput(employee *models.Employee, fields []string) (service.AbsenceInput, error) {
	args, err := parseAbsenceArgs(fields, h.now())
	if err != nil {
		return service.AbsenceInput{}, errs.Invalid("args", err.Error())
	}
	return service.AbsenceInput{
		EmployeeID: employee.ID,
		Type:       args.Type,
		StartDate:  args.StartDate,
		EndDate:    args.EndDate,
		Scope:      args.Scope,
		Note:       args.Note,
	}, nil
}

func (h *Handler) ownAbsence(chatID int64, employee *models.Employee, rawID string) (*models.Absence, bool) {
	id, err := parseID(rawID)
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return nil, false
	}

	absence, err := h.absences.GetByID(id)
	if err != nil {
		h.replyError(chatID, "Ошибка получения отсутствия", err)
		return nil, false
	}
	if absence.EmployeeID != employee.ID && !employee.IsAdmin() {
		h.send(chatID, "⛔ Это не ваша заявка.")
		return nil, false
	}
	return absence, true
}

func (h *Handler) createAbsence(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	input, err := h.absenceInput(employee, strings.Fields(args))
	if err != nil {
		h.replyError(chatID, "Заявка не создана", err)
		return
	}

	absence, err := h.absences.Create(employee.ID, input)
	if err != nil {
		h.replyError(chatID, "Заявка не создана", err)
		return
	}
	h.send(chatID, "✅ Заявка создана и ожидает согласования:\n"+absence.FormatLine())
}

func (h *Handler) editAbsence(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) < 3 {
		h.send(chatID, "❌ Формат: /editabsence ID тип начало [конец] [доля] [заметка]")
		return
	}

	absence, ok := h.ownAbsence(chatID, employee, fields[0])
	if !ok {
		return
	}

	input, err := h.absenceInput(employee, fields[1:])
	if err != nil {
		h.replyError(chatID, "Заявка не изменена", err)
		return
	}

	updated, err := h.absences.Update(employee.ID, absence.ID, input)
	if err != nil {
		h.replyError(chatID, "Заявка не изменена", err)
		return
	}

	text := "✅ Заявка обновлена:\n" + updated.FormatLine()
	if absence.Status == models.AbsenceStatusApproved {
		text += "\n⏳ Заявка снова ожидает согласования."
	}
	h.send(chatID, text)
}

func (h *Handler) cancelAbsence(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	absence, ok := h.ownAbsence(chatID, employee, args)
	if !ok {
		return
	}

	cancelled, err := h.absences.Cancel(employee.ID, absence.ID)
	if err != nil {
		h.replyError(chatID, "Заявка не отменена", err)
		return
	}
	h.send(chatID, "🚫 Заявка отменена:\n"+cancelled.FormatLine())
}

func (h *Handler) deleteAbsence(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	absence, ok := h.ownAbsence(chatID, employee, args)
	if !ok {
		return
	}

	if err := h.absences.Delete(employee.ID, absence.ID); err != nil {
		h.replyError(chatID, "Заявка не удалена", err)
		return
	}
	h.send(chatID, fmt.Sprintf("🗑️ Заявка #%d удалена.", absence.ID))
}

func (h *Handler) showMyAbsences(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	absences, err := h.absences.GetByEmployee(employee.ID)
	if err != nil {
		h.replyError(chatID, "Ошибка получения отсутствий", err)
		return
	}
	if len(absences) == 0 {
		h.send(chatID, "📭 У вас нет отсутствий.\nСоздайте заявку командой /absence")
		return
	}

	var b strings.Builder
	b.WriteString("🏖️ Мои отсутствия:\n\n")
	for _, a := range absences {
		b.WriteString(a.FormatLine() + "\n")
	}
	h.send(chatID, b.String())
}

func (h *Handler) showVacationStats(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}

	year := h.now().Year()
	if strings.TrimSpace(args) != "" {
		y, err := strconv.Atoi(strings.TrimSpace(args))
		if err != nil || y < 2000 || y > 2100 {
			h.send(chatID, "❌ Неверный год. Используйте год между 2000 и 2100.")
			return
		}
		year = y
	}

	stats, err := h.absences.GetVacationStats(employee.ID, year, employee.VacationDays)
	if err != nil {
		h.replyError(chatID, "Ошибка расчета отпуска", err)
		return
	}
	h.send(chatID, service.FormatVacationStats(stats))
}
