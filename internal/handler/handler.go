package handler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"work-time-bot/internal/config"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"
	"work-time-bot/internal/service"
	"work-time-bot/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	client     *telegram.Client
	employees  *service.EmployeeService
	entries    *service.TimeEntryService
	absences   *service.AbsenceService
	calendar   *service.CalendarService
	stats      *service.MonthlyStatService
	settings   *service.SettingsService
	archive    *service.ArchiveQueueProcessor
	userStates map[int64]string
	config     *config.BotConfig
	logger     *logrus.Logger
	now        func() time.Time
}

func NewHandler(
	client *telegram.Client,
	employees *service.EmployeeService,
	entries *service.TimeEntryService,
	absences *service.AbsenceService,
	calendar *service.CalendarService,
	stats *service.MonthlyStatService,
	settings *service.SettingsService,
	archive *service.ArchiveQueueProcessor,
	cfg *config.BotConfig,
) *Handler {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &Handler{
		client:     client,
		employees:  employees,
		entries:    entries,
		absences:   absences,
		calendar:   calendar,
		stats:      stats,
		settings:   settings,
		archive:    archive,
		userStates: make(map[int64]string),
		config:     cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// HandleUpdates обрабатывает обновления последовательно, пока канал не закрыт
func (h *Handler) HandleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.CallbackQuery != nil {
			h.handleCallbackQuery(update.CallbackQuery)
			continue
		}

		if update.Message == nil {
			continue
		}

		h.handleMessage(update.Message)
	}
}

// handleCallbackQuery обрабатывает inline кнопки согласования из /pending
func (h *Handler) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	defer h.client.AnswerCallback(callback.ID, "")

	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	// Удаляем клавиатуру, чтобы решение не отправили дважды
	h.client.Send(tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.NewInlineKeyboardMarkup()))

	action, rawID, ok := strings.Cut(callback.Data, ":")
	if !ok {
		return
	}
	id, err := parseID(rawID)
	if err != nil {
		return
	}

	admin, ok := h.requireAdmin(chatID)
	if !ok {
		return
	}

	switch action {
	case callbackApproveEntry:
		h.decideEntry(chatID, admin, id, true)
	case callbackRejectEntry:
		h.decideEntry(chatID, admin, id, false)
	case callbackApproveAbsence:
		h.decideAbsence(chatID, admin, id, true)
	case callbackRejectAbsence:
		h.decideAbsence(chatID, admin, id, false)
	default:
		h.logger.WithField("data", callback.Data).Warn("Unknown callback")
	}
}

func (h *Handler) handleMessage(message *tgbotapi.Message) {
	if message.From != nil {
		h.logger.Infof("[%s] %s", message.From.UserName, message.Text)
	}

	chatID := message.Chat.ID

	// Пользователь в процессе создания профиля
	if state, exists := h.userStates[chatID]; exists && !message.IsCommand() {
		h.handleProfileState(message, state)
		return
	}

	if message.IsCommand() {
		delete(h.userStates, chatID)
		h.handleCommand(message)
		return
	}

	h.client.SendText(chatID, "🤖 Я понимаю только команды. Используйте /help для списка команд.")
}

func (h *Handler) send(chatID int64, text string) {
	h.client.SendText(chatID, text)
}

// replyError выбирает ответ по виду ошибки
func (h *Handler) replyError(chatID int64, action string, err error) {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		h.send(chatID, "❌ "+action+":\n"+formatValidation(err))
	case errs.KindNotFound:
		h.send(chatID, "🔍 "+err.Error())
	case errs.KindForbidden:
		h.send(chatID, "⛔ "+err.Error())
	default:
		h.logger.WithError(err).WithField("chat_id", chatID).Error(action)
		h.send(chatID, fmt.Sprintf("❌ %s. Попробуйте позже.", action))
	}
}

func formatValidation(err error) string {
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}

	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		for _, msg := range verr.Fields[k] {
			lines = append(lines, "• "+msg)
		}
	}
	return strings.Join(lines, "\n")
}

// requireEmployee возвращает профиль отправителя или сообщает, что его нет
func (h *Handler) requireEmployee(chatID int64) (*models.Employee, bool) {
	employee, err := h.employees.GetByChatID(chatID)
	if err != nil {
		if errs.KindOf(err) == errs.KindNotFound {
			h.send(chatID, "❌ Профиль не найден.\nИспользуйте /createprofile чтобы создать профиль.")
		} else {
			h.replyError(chatID, "Ошибка получения профиля", err)
		}
		return nil, false
	}
	return employee, true
}

func (h *Handler) requireAdmin(chatID int64) (*models.Employee, bool) {
	employee, ok := h.requireEmployee(chatID)
	if !ok {
		return nil, false
	}
	if !employee.IsAdmin() {
		h.logger.WithField("chat_id", chatID).Warn("Unauthorized access to admin command")
		h.send(chatID, "❌ Доступ запрещен. Эта команда только для администраторов.")
		return nil, false
	}
	return employee, true
}
