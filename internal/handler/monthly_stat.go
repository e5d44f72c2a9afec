package handler

import (
	"fmt"
	"strconv"
	"strings"
	"work-time-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showMonthlyStat показывает статистику за месяц: /stat [месяц] или /stat [год месяц]
func (h *Handler) showMonthlyStat(message *tgbotapi.Message, args string) {
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

	data, err := h.stats.Compute(employee.ID, year, month)
	if err != nil {
		h.replyError(chatID, "Ошибка получения статистики", err)
		return
	}
	h.send(chatID, service.FormatStatistics(data.Statistics))
}

// showUserStat - статистика другого сотрудника для администратора: /userstat chat_id [год месяц]
func (h *Handler) showUserStat(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 {
		h.send(chatID, "❌ Формат: /userstat chat_id [год месяц]")
		return
	}
	targetChatID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		h.send(chatID, "❌ Неверный chat_id.")
		return
	}

	year, month, err := parseYearMonth(strings.Join(fields[1:], " "), h.now())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	target, err := h.employees.GetByChatID(targetChatID)
	if err != nil {
		h.replyError(chatID, "Ошибка получения сотрудника", err)
		return
	}

	data, err := h.stats.Compute(target.ID, year, month)
	if err != nil {
		h.replyError(chatID, "Ошибка получения статистики", err)
		return
	}
	h.send(chatID, fmt.Sprintf("👤 %s\n\n%s", target.FullName(), service.FormatStatistics(data.Statistics)))
}
