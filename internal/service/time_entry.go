package service

import (
	"fmt"
	"time"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"
	"work-time-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

const entityTimeEntry = "time_entry"

// Пороги для обязательного перерыва, в минутах грязного времени
const (
	breakThreshold6h = 6 * 60
	breakThreshold9h = 9 * 60
)

type TimeEntryInput struct {
	EmployeeID   uint
	Date         time.Time
	StartTime    string
	EndTime      string
	BreakMinutes int
	ProjectID    *uint
	Note         string
}

// MonthArchiver ставит утвержденный месяц в очередь архивации
type MonthArchiver interface {
	Enqueue(employeeID uint, year, month int, approverID uint) (*models.ArchiveJob, error)
}

type TimeEntryService struct {
	clock
	repo     repository.TimeEntryRepository
	settings *SettingsService
	audit    AuditRecorder
	archiver MonthArchiver
	logger   *logrus.Logger
}

func NewTimeEntryService(
	repo repository.TimeEntryRepository,
	settings *SettingsService,
	audit AuditRecorder,
) *TimeEntryService {
	return &TimeEntryService{
		repo:     repo,
		settings: settings,
		audit:    audit,
		logger:   newLogger(),
	}
}

// SetArchiver подключает постановку месяца в архив после полного утверждения
func (s *TimeEntryService) SetArchiver(archiver MonthArchiver) {
	s.archiver = archiver
}

// BreakForGross возвращает минимальный перерыв для грязной продолжительности
func (s *TimeEntryService) BreakForGross(gross int) int {
	switch {
	case gross <= breakThreshold6h:
		return 0
	case gross <= breakThreshold9h:
		return s.settings.MinBreak6h()
	default:
		return s.settings.MinBreak9h()
	}
}

// SuggestBreak подсказывает перерыв для интервала "ЧЧ:ММ"-"ЧЧ:ММ", ночная смена учитывается
func (s *TimeEntryService) SuggestBreak(startTime, endTime string) (int, error) {
	start, err := models.ParseClock(startTime)
	if err != nil {
		return 0, errs.Invalid("start_time", err.Error())
	}
	end, err := models.ParseClock(endTime)
	if err != nil {
		return 0, errs.Invalid("end_time", err.Error())
	}
	return s.BreakForGross(models.GrossMinutes(start, end)), nil
}

func (s *TimeEntryService) validate(input TimeEntryInput) error {
	verr := errs.NewValidationError()

	if input.EmployeeID == 0 {
		verr.Add("employee_id", "не указан сотрудник")
	}
	if input.Date.IsZero() {
		verr.Add("date", "не указана дата")
	} else if models.DateOnly(input.Date).After(s.today()) && !s.settings.AllowFutureEntries() {
		verr.Add("date", "нельзя вносить записи на будущие даты")
	}

	start, startErr := models.ParseClock(input.StartTime)
	if startErr != nil {
		verr.Add("start_time", startErr.Error())
	}
	end, endErr := models.ParseClock(input.EndTime)
	if endErr != nil {
		verr.Add("end_time", endErr.Error())
	}

	if input.BreakMinutes < 0 {
		verr.Add("break_minutes", "перерыв не может быть отрицательным")
	}

	if startErr == nil && endErr == nil {
		gross := models.GrossMinutes(start, end)
		maxMinutes := int(s.settings.MaxDailyHours() * 60)

		if gross == 0 {
			verr.Add("end_time", "время окончания совпадает со временем начала")
		}
		if gross > maxMinutes {
			verr.Add("end_time", fmt.Sprintf("превышена максимальная продолжительность рабочего дня (%s)", models.FormatMinutes(maxMinutes)))
		}
		if required := s.BreakForGross(gross); input.BreakMinutes >= 0 && input.BreakMinutes < required {
			verr.Add("break_minutes", fmt.Sprintf("перерыв меньше установленного минимума: %d мин", required))
		}
	}

	return verr.OrNil()
}

func (s *TimeEntryService) load(id uint) (*models.TimeEntry, error) {
	entry, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errs.NotFound("запись времени", id)
	}
	return entry, nil
}

func (s *TimeEntryService) GetByID(id uint) (*models.TimeEntry, error) {
	return s.load(id)
}

// Create создает запись в статусе черновика
func (s *TimeEntryService) Create(actorID uint, input TimeEntryInput) (*models.TimeEntry, error) {
	s.logger.WithFields(logrus.Fields{
		"employee_id": input.EmployeeID,
		"date":        input.Date.Format(models.DateLayout),
		"start":       input.StartTime,
		"end":         input.EndTime,
	}).Info("Creating time entry")

	if err := s.validate(input); err != nil {
		return nil, err
	}

	entry := &models.TimeEntry{
		EmployeeID:   input.EmployeeID,
		Date:         models.DateOnly(input.Date),
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		BreakMinutes: input.BreakMinutes,
		ProjectID:    input.ProjectID,
		Note:         input.Note,
		Status:       models.EntryStatusDraft,
	}
	if err := entry.CalculateWorkMinutes(); err != nil {
		return nil, errs.Invalid("start_time", err.Error())
	}

	if err := s.repo.Create(entry); err != nil {
		s.logger.WithError(err).Error("Failed to create time entry")
		return nil, err
	}

	recordAudit(s.audit, s.logger, actorID, "create", entityTimeEntry, entry.ID, nil, entry)
	return entry, nil
}

// Update изменяет запись; утвержденные записи не редактируются, отклоненные возвращаются в черновик
func (s *TimeEntryService) Update(actorID, id uint, input TimeEntryInput) (*models.TimeEntry, error) {
	entry, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if entry.Status == models.EntryStatusApproved {
		return nil, errs.Forbidden("запись времени", entry.Status, "update", "утвержденную запись нельзя изменить")
	}

	input.EmployeeID = entry.EmployeeID
	if err := s.validate(input); err != nil {
		return nil, err
	}

	before := *entry
	entry.Date = models.DateOnly(input.Date)
	entry.StartTime = input.StartTime
	entry.EndTime = input.EndTime
	entry.BreakMinutes = input.BreakMinutes
	entry.ProjectID = input.ProjectID
	entry.Note = input.Note
	if entry.Status == models.EntryStatusRejected {
		entry.Status = models.EntryStatusDraft
	}
	if err := entry.CalculateWorkMinutes(); err != nil {
		return nil, errs.Invalid("start_time", err.Error())
	}

	if err := s.repo.Update(entry); err != nil {
		s.logger.WithError(err).Error("Failed to update time entry")
		return nil, err
	}

	recordAudit(s.audit, s.logger, actorID, "update", entityTimeEntry, entry.ID, before, entry)
	return entry, nil
}

func (s *TimeEntryService) Delete(actorID, id uint) error {
	entry, err := s.load(id)
	if err != nil {
		return err
	}
	if entry.Status == models.EntryStatusApproved {
		return errs.Forbidden("запись времени", entry.Status, "delete", "утвержденную запись нельзя удалить")
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	recordAudit(s.audit, s.logger, actorID, "delete", entityTimeEntry, id, entry, nil)
	return nil
}

// Submit отправляет запись на согласование
func (s *TimeEntryService) Submit(actorID, id uint) (*models.TimeEntry, error) {
	entry, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := s.submit(actorID, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *TimeEntryService) submit(actorID uint, entry *models.TimeEntry) error {
	if entry.Status != models.EntryStatusDraft && entry.Status != models.EntryStatusRejected {
		return errs.Forbidden("запись времени", entry.Status, "submit", "")
	}

	before := *entry
	now := s.current()
	submitter := actorID
	entry.Status = models.EntryStatusSubmitted
	entry.SubmittedAt = &now
	entry.SubmittedBy = &submitter
	entry.ApprovedAt = nil
	entry.ApprovedBy = nil

	if err := s.repo.Update(entry); err != nil {
		return err
	}

	recordAudit(s.audit, s.logger, actorID, "submit", entityTimeEntry, entry.ID, before, entry)
	return nil
}

// SubmitMonth отправляет все черновики и отклоненные записи месяца
func (s *TimeEntryService) SubmitMonth(actorID, employeeID uint, year, month int) (int, error) {
	entries, err := s.repo.GetByEmployeeAndMonth(employeeID, year, month)
	if err != nil {
		return 0, err
	}

	submitted := 0
	for _, entry := range entries {
		if entry.Status != models.EntryStatusDraft && entry.Status != models.EntryStatusRejected {
			continue
		}
		if err := s.submit(actorID, entry); err != nil {
			return submitted, err
		}
		submitted++
	}

	s.logger.WithFields(logrus.Fields{
		"employee_id": employeeID,
		"year":        year,
		"month":       month,
		"submitted":   submitted,
	}).Info("Month submitted")
	return submitted, nil
}

func (s *TimeEntryService) Approve(actorID, id uint) (*models.TimeEntry, error) {
	entry, err := s.decide(actorID, id, models.EntryStatusApproved, "approve")
	if err != nil {
		return nil, err
	}
	s.archiveIfMonthApproved(entry, actorID)
	return entry, nil
}

func (s *TimeEntryService) Reject(actorID, id uint) (*models.TimeEntry, error) {
	return s.decide(actorID, id, models.EntryStatusRejected, "reject")
}

// decide - общий переход из submitted; отклонение тоже фиксирует, кто и когда решил
func (s *TimeEntryService) decide(actorID, id uint, status, action string) (*models.TimeEntry, error) {
	entry, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if entry.Status != models.EntryStatusSubmitted {
		return nil, errs.Forbidden("запись времени", entry.Status, action, "доступно только для записей на согласовании")
	}

	before := *entry
	now := s.current()
	approver := actorID
	entry.Status = status
	entry.ApprovedAt = &now
	entry.ApprovedBy = &approver

	if err := s.repo.Update(entry); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":          entry.ID,
		"employee_id": entry.EmployeeID,
		"status":      status,
		"actor_id":    actorID,
	}).Info("Time entry decided")

	recordAudit(s.audit, s.logger, actorID, action, entityTimeEntry, entry.ID, before, entry)
	return entry, nil
}

func (s *TimeEntryService) archiveIfMonthApproved(entry *models.TimeEntry, approverID uint) {
	if s.archiver == nil {
		return
	}

	year, month := entry.Date.Year(), int(entry.Date.Month())
	approved, err := s.IsMonthApproved(entry.EmployeeID, year, month)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to check month approval")
		return
	}
	if !approved {
		return
	}

	if _, err := s.archiver.Enqueue(entry.EmployeeID, year, month, approverID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"employee_id": entry.EmployeeID,
			"year":        year,
			"month":       month,
		}).Error("Failed to enqueue archive job")
	}
}

// IsMonthApproved - в месяце есть записи и все они утверждены
func (s *TimeEntryService) IsMonthApproved(employeeID uint, year, month int) (bool, error) {
	total, approved, err := s.repo.CountByEmployeeAndMonth(employeeID, year, month)
	if err != nil {
		return false, err
	}
	return total > 0 && approved == total, nil
}

func (s *TimeEntryService) GetMonthEntries(employeeID uint, year, month int) ([]*models.TimeEntry, error) {
	return s.repo.GetByEmployeeAndMonth(employeeID, year, month)
}

func (s *TimeEntryService) GetPendingApproval() ([]*models.TimeEntry, error) {
	return s.repo.GetByStatus(models.EntryStatusSubmitted)
}
