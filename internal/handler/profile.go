package handler

import (
	"fmt"
	"strings"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	stateAwaitingFirstName = "awaiting_first_name"
	stateAwaitingLastName  = "awaiting_last_name:"
	stateAwaitingUpdate    = "awaiting_update"
)

// startProfileCreation начинает процесс создания профиля
func (h *Handler) startProfileCreation(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if _, err := h.employees.GetByChatID(chatID); err == nil {
		h.send(chatID, "❌ У вас уже есть профиль!\nИспользуйте /myprofile чтобы посмотреть его или /updateprofile чтобы изменить.")
		return
	} else if errs.KindOf(err) != errs.KindNotFound {
		h.replyError(chatID, "Ошибка получения профиля", err)
		return
	}

	h.userStates[chatID] = stateAwaitingFirstName
	h.send(chatID, `👤 Создание профиля

Шаг 1 из 2:
✏️ Пожалуйста, отправьте ваше имя:`)
}

// handleProfileState обрабатывает шаги создания/обновления профиля
func (h *Handler) handleProfileState(message *tgbotapi.Message, state string) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	username := ""
	if message.From != nil {
		username = message.From.UserName
	}

	switch {
	case state == stateAwaitingFirstName:
		if text == "" {
			h.send(chatID, "✏️ Имя не может быть пустым, отправьте его еще раз:")
			return
		}
		h.userStates[chatID] = stateAwaitingLastName + text
		h.send(chatID, fmt.Sprintf(`Шаг 2 из 2:
✅ Имя сохранено: %s
✏️ Теперь отправьте вашу фамилию (если нет фамилии, отправьте "-"):`, text))

	case strings.HasPrefix(state, stateAwaitingLastName):
		delete(h.userStates, chatID)

		firstName := strings.TrimPrefix(state, stateAwaitingLastName)
		lastName := text
		if lastName == "-" {
			lastName = ""
		}

		employee, err := h.employees.Register(chatID, username, firstName, lastName)
		if err != nil {
			h.replyError(chatID, "Ошибка создания профиля", err)
			return
		}

		h.send(chatID, fmt.Sprintf("🎉 Профиль успешно создан!\n\n%s\n\nДобавьте первую запись командой /entry или посмотрите /help.",
			service.FormatEmployeeInfo(employee)))

	case state == stateAwaitingUpdate:
		delete(h.userStates, chatID)

		parts := strings.Fields(text)
		if len(parts) == 0 {
			h.send(chatID, "❌ Неверный формат. Пожалуйста, отправьте имя и фамилию.")
			return
		}
		lastName := strings.Join(parts[1:], " ")

		employee, err := h.employees.UpdateName(chatID, username, parts[0], lastName)
		if err != nil {
			h.replyError(chatID, "Ошибка обновления профиля", err)
			return
		}
		h.send(chatID, "✅ Профиль успешно обновлен!\n\n"+service.FormatEmployeeInfo(employee))

	default:
		delete(h.userStates, chatID)
	}
}

func (h *Handler) showProfile(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return
	}
	h.send(chatID, service.FormatEmployeeInfo(employee))
}

func (h *Handler) startProfileUpdate(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireEmployee(chatID); !ok {
		return
	}

	h.userStates[chatID] = stateAwaitingUpdate
	h.send(chatID, `✏️ Обновление профиля

Отправьте новые данные в формате:
Имя Фамилия

Например: Иван Иванов
Или просто: Иван (если фамилии нет)`)
}
