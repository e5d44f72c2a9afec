package handler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"work-time-bot/internal/models"
	"work-time-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackApproveEntry   = "entry_approve"
	callbackRejectEntry    = "entry_reject"
	callbackApproveAbsence = "absence_approve"
	callbackRejectAbsence  = "absence_reject"
)

func (h *Handler) decideEntry(chatID int64, admin *models.Employee, id uint, approve bool) {
	var (
		entry *models.TimeEntry
		err   error
	)
	if approve {
		entry, err = h.entries.Approve(admin.ID, id)
	} else {
		entry, err = h.entries.Reject(admin.ID, id)
	}
	if err != nil {
		h.replyError(chatID, "Решение не сохранено", err)
		return
	}

	h.send(chatID, "✅ Готово:\n"+entry.FormatLine())
	h.notifyEmployee(entry.EmployeeID, "📬 Решение по вашей записи:\n"+entry.FormatLine())
}

func (h *Handler) decideAbsence(chatID int64, admin *models.Employee, id uint, approve bool) {
	var (
		absence *models.Absence
		err     error
	)
	if approve {
		absence, err = h.absences.Approve(admin.ID, id)
	} else {
		absence, err = h.absences.Reject(admin.ID, id)
	}
	if err != nil {
		h.replyError(chatID, "Решение не сохранено", err)
		return
	}

	h.send(chatID, "✅ Готово:\n"+absence.FormatLine())
	h.notifyEmployee(absence.EmployeeID, "📬 Решение по вашей заявке:\n"+absence.FormatLine())
}

// notifyEmployee пишет сотруднику; ошибка только логируется
func (h *Handler) notifyEmployee(employeeID uint, text string) {
	employee, err := h.employees.GetByID(employeeID)
	if err != nil {
		h.logger.WithError(err).WithField("employee_id", employeeID).Warn("Failed to notify employee")
		return
	}
	h.send(employee.ChatID, text)
}

func (h *Handler) decideCommand(message *tgbotapi.Message, args string, decide func(int64, *models.Employee, uint, bool), approve bool) {
	chatID := message.Chat.ID
	admin, ok := h.requireAdmin(chatID)
	if !ok {
		return
	}

	id, err := parseID(args)
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}
	decide(chatID, admin, id, approve)
}

func (h *Handler) approveEntry(message *tgbotapi.Message, args string) {
	h.decideCommand(message, args, h.decideEntry, true)
}

func (h *Handler) rejectEntry(message *tgbotapi.Message, args string) {
	h.decideCommand(message, args, h.decideEntry, false)
}

func (h *Handler) approveAbsence(message *tgbotapi.Message, args string) {
	h.decideCommand(message, args, h.decideAbsence, true)
}

func (h *Handler) rejectAbsence(message *tgbotapi.Message, args string) {
	h.decideCommand(message, args, h.decideAbsence, false)
}

func decisionKeyboard(approve, reject string, id uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Утвердить", fmt.Sprintf("%s:%d", approve, id)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("%s:%d", reject, id)),
		),
	)
}

// showPending выводит каждую запись отдельным сообщением с кнопками решения
func (h *Handler) showPending(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	entries, err := h.entries.GetPendingApproval()
	if err != nil {
		h.replyError(chatID, "Ошибка получения записей", err)
		return
	}
	absences, err := h.absences.GetPending()
	if err != nil {
		h.replyError(chatID, "Ошибка получения заявок", err)
		return
	}

	if len(entries) == 0 && len(absences) == 0 {
		h.send(chatID, "🎉 Нет записей и заявок на согласовании.")
		return
	}

	names := map[uint]string{}
	nameOf := func(employeeID uint) string {
		if name, ok := names[employeeID]; ok {
			return name
		}
		name := fmt.Sprintf("сотрудник %d", employeeID)
		if employee, err := h.employees.GetByID(employeeID); err == nil {
			name = employee.FullName()
		}
		names[employeeID] = name
		return name
	}

	h.send(chatID, fmt.Sprintf("⏳ На согласовании: записей %d, заявок %d", len(entries), len(absences)))

	for _, e := range entries {
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("⏰ %s\n%s", nameOf(e.EmployeeID), e.FormatLine()))
		msg.ReplyMarkup = decisionKeyboard(callbackApproveEntry, callbackRejectEntry, e.ID)
		h.client.Send(msg)
	}
	for _, a := range absences {
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🏖️ %s\n%s", nameOf(a.EmployeeID), a.FormatLine()))
		msg.ReplyMarkup = decisionKeyboard(callbackApproveAbsence, callbackRejectAbsence, a.ID)
		h.client.Send(msg)
	}
}

func (h *Handler) showAllUsers(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	employees, err := h.employees.GetAll()
	if err != nil {
		h.replyError(chatID, "Ошибка получения списка пользователей", err)
		return
	}
	h.send(chatID, service.FormatEmployees(employees))
}

// setEmployee: /setemployee chat_id часы регион [дни_отпуска]
func (h *Handler) setEmployee(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) < 3 {
		h.send(chatID, "❌ Формат: /setemployee chat_id часы_в_неделю регион [дни_отпуска]")
		return
	}

	targetChatID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		h.send(chatID, "❌ Неверный chat_id.")
		return
	}
	hours, err := strconv.ParseFloat(strings.ReplaceAll(fields[1], ",", "."), 64)
	if err != nil {
		h.send(chatID, "❌ Неверное количество часов.")
		return
	}

	target, err := h.employees.GetByChatID(targetChatID)
	if err != nil {
		h.replyError(chatID, "Ошибка получения сотрудника", err)
		return
	}

	params := service.WorkParams{
		WeeklyHours:  hours,
		Region:       strings.ToUpper(fields[2]),
		VacationDays: target.VacationDays,
	}
	if len(fields) > 3 {
		days, err := strconv.ParseFloat(strings.ReplaceAll(fields[3], ",", "."), 64)
		if err != nil {
			h.send(chatID, "❌ Неверное количество дней отпуска.")
			return
		}
		params.VacationDays = days
	}

	updated, err := h.employees.SetWorkParams(targetChatID, params)
	if err != nil {
		h.replyError(chatID, "Параметры не сохранены", err)
		return
	}
	h.send(chatID, "✅ Параметры обновлены:\n\n"+service.FormatEmployeeInfo(updated))
}

func (h *Handler) changeRole(message *tgbotapi.Message, args, role, done string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	targetChatID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.send(chatID, "❌ Укажите chat_id пользователя.")
		return
	}

	if role == models.RoleClient && targetChatID == h.config.BaseAdminChatID {
		h.send(chatID, "❌ Нельзя снять главного администратора.")
		return
	}

	if err := h.employees.UpdateRole(targetChatID, role); err != nil {
		h.replyError(chatID, "Роль не изменена", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Пользователь %d %s.", targetChatID, done))
}

func (h *Handler) promoteToAdmin(message *tgbotapi.Message, args string) {
	h.changeRole(message, args, models.RoleAdmin, "назначен администратором")
}

func (h *Handler) demoteToClient(message *tgbotapi.Message, args string) {
	h.changeRole(message, args, models.RoleClient, "больше не администратор")
}

func (h *Handler) showSettings(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	effective := h.settings.Effective()
	keys := make([]string, 0, len(effective))
	for k := range effective {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("⚙️ Настройки:\n\n")
	for _, k := range keys {
		value := effective[k]
		if value == "" {
			value = "(не задано)"
		}
		fmt.Fprintf(&b, "%s = %s\n", k, value)
	}
	h.send(chatID, b.String())
}

func (h *Handler) setSetting(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	key, value, found := strings.Cut(strings.TrimSpace(args), " ")
	if !found {
		h.send(chatID, "❌ Формат: /set ключ значение")
		return
	}

	if err := h.settings.Set(key, strings.TrimSpace(value)); err != nil {
		h.replyError(chatID, "Настройка не сохранена", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ %s = %s", key, strings.TrimSpace(value)))
}

// enqueueArchive ставит утвержденный месяц в очередь вручную: /archive chat_id год месяц
func (h *Handler) enqueueArchive(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	admin, ok := h.requireAdmin(chatID)
	if !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 3 {
		h.send(chatID, "❌ Формат: /archive chat_id год месяц")
		return
	}
	targetChatID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		h.send(chatID, "❌ Неверный chat_id.")
		return
	}
	year, month, err := parseYearMonth(fields[1]+" "+fields[2], h.now())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	target, err := h.employees.GetByChatID(targetChatID)
	if err != nil {
		h.replyError(chatID, "Ошибка получения сотрудника", err)
		return
	}

	approved, err := h.entries.IsMonthApproved(target.ID, year, month)
	if err != nil {
		h.replyError(chatID, "Ошибка проверки месяца", err)
		return
	}
	if !approved {
		h.send(chatID, "⛔ Месяц утвержден не полностью, архивация недоступна.")
		return
	}

	job, err := h.archive.Enqueue(target.ID, year, month, admin.ID)
	if err != nil {
		h.replyError(chatID, "Задача не создана", err)
		return
	}
	h.send(chatID, fmt.Sprintf("🗄️ Задача архивации #%d: %s", job.ID, job.Status))
}

func (h *Handler) showArchiveJobs(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	jobs, err := h.archive.Recent(20)
	if err != nil {
		h.replyError(chatID, "Ошибка получения задач", err)
		return
	}
	h.send(chatID, service.FormatArchiveJobs(jobs))
}
