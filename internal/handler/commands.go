package handler

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start", "help":
		h.sendHelpMessage(message)
	case "helpadmin":
		h.sendAdminHelpMessage(message)

	// Профиль
	case "createprofile":
		h.startProfileCreation(message)
	case "myprofile":
		h.showProfile(message)
	case "updateprofile":
		h.startProfileUpdate(message)

	// Учет времени
	case "entry":
		h.createEntry(message, args)
	case "editentry":
		h.editEntry(message, args)
	case "delentry":
		h.deleteEntry(message, args)
	case "submit":
		h.submitEntry(message, args)
	case "submitmonth":
		h.submitMonth(message, args)
	case "entries":
		h.showEntries(message, args)
	case "breakhint":
		h.breakHint(message, args)

	// Отсутствия
	case "absence":
		h.createAbsence(message, args)
	case "editabsence":
		h.editAbsence(message, args)
	case "cancelabsence":
		h.cancelAbsence(message, args)
	case "delabsence":
		h.deleteAbsence(message, args)
	case "myabsences":
		h.showMyAbsences(message)
	case "vacationstats":
		h.showVacationStats(message, args)

	// Статистика и календарь
	case "stat":
		h.showMonthlyStat(message, args)
	case "checkday":
		h.checkDay(message, args)
	case "holidays":
		h.showHolidays(message, args)

	// Администрирование
	case "approveentry":
		h.approveEntry(message, args)
	case "rejectentry":
		h.rejectEntry(message, args)
	case "approveabsence":
		h.approveAbsence(message, args)
	case "rejectabsence":
		h.rejectAbsence(message, args)
	case "pending":
		h.showPending(message)
	case "userstat":
		h.showUserStat(message, args)
	case "genholidays":
		h.generateHolidays(message, args)
	case "addholiday":
		h.addHoliday(message, args)
	case "delholiday":
		h.deleteHoliday(message, args)
	case "setemployee":
		h.setEmployee(message, args)
	case "promote":
		h.promoteToAdmin(message, args)
	case "demote":
		h.demoteToClient(message, args)
	case "allusers":
		h.showAllUsers(message)
	case "settings":
		h.showSettings(message)
	case "set":
		h.setSetting(message, args)
	case "archive":
		h.enqueueArchive(message, args)
	case "archivejobs":
		h.showArchiveJobs(message)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.send(message.Chat.ID, "❌ Неизвестная команда. Используйте /help для списка команд.")
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	text := `📋 Доступные команды:

👤 Профиль:
/createprofile - Создать профиль
/myprofile - Показать мой профиль
/updateprofile - Изменить имя и фамилию

⏰ Учет рабочего времени:
/entry [дата] начало конец [перерыв] [заметка] - Добавить запись
    Пример: /entry 02.03.2026 08:00 16:30 30
    Без перерыва бот подставит минимальный по закону
/editentry ID [дата] начало конец [перерыв] - Изменить запись
/delentry ID - Удалить запись (кроме утвержденных)
/submit ID - Отправить запись на согласование
/submitmonth [год месяц] - Отправить все записи месяца
/entries [год месяц] - Мои записи за месяц
/breakhint начало конец - Подсказать минимальный перерыв

🏖️ Отсутствия:
/absence тип начало [конец] [доля] [заметка] - Заявка на отсутствие
    Типы: vacation, sick, child_sick, unpaid, special, training, compensatory
    Пример: /absence vacation 01.07.2026 14.07.2026
    Пример: /absence compensatory 20.03.2026 0.5
/editabsence ID тип начало [конец] [доля] - Изменить заявку
/cancelabsence ID - Отменить заявку в ожидании
/delabsence ID - Удалить заявку (кроме утвержденных)
/myabsences - Мои отсутствия
/vacationstats [год] - Остаток отпуска

📊 Статистика и календарь:
/stat [месяц] или /stat [год месяц] - Статистика за месяц
/checkday [дата] - Проверить, является ли день рабочим
/holidays [год] - Праздники моего региона

/helpadmin - Команды администратора`

	h.send(message.Chat.ID, text)
}

func (h *Handler) sendAdminHelpMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(chatID); !ok {
		return
	}

	text := `👑 Администрирование:

✅ Согласование:
/pending - Записи и заявки на согласовании
/approveentry ID, /rejectentry ID - Решение по записи времени
/approveabsence ID, /rejectabsence ID - Решение по отсутствию
/userstat chat_id [год месяц] - Статистика сотрудника

👥 Сотрудники:
/allusers - Все сотрудники
/setemployee chat_id часы_в_неделю регион [дни_отпуска]
    Пример: /setemployee 123456 38.5 BW 30
/promote chat_id - Назначить администратора
/demote chat_id - Снять администратора

📅 Праздники:
/genholidays [год] [регион] - Сгенерировать праздники (ручные будут удалены)
/addholiday дата доля регион название - Ручной праздник
    Пример: /addholiday 24.12.2026 0.5 BY Heiligabend
/delholiday ID - Удалить праздник
/holidays [год] [регион] - Список праздников

⚙️ Настройки и архив:
/settings - Текущие настройки
/set ключ значение - Изменить настройку
/archive chat_id год месяц - Поставить месяц в архив
/archivejobs - Последние задачи архивации`

	if h.config != nil && h.config.BaseAdminChatID != 0 {
		text += fmt.Sprintf("\n\n🔧 ID главного администратора: %d", h.config.BaseAdminChatID)
	}

	h.send(chatID, text)
}
