package service

import (
	"fmt"
	"time"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"
	"work-time-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

const entityAbsence = "absence"

type AbsenceInput struct {
	EmployeeID uint
	Type       models.AbsenceType
	StartDate  time.Time
	EndDate    time.Time
	Scope      float64
	Note       string
}

// MonthApproval сообщает, утвержден ли месяц сотрудника целиком
type MonthApproval interface {
	IsMonthApproved(employeeID uint, year, month int) (bool, error)
}

type VacationStats struct {
	Year      int
	Total     float64
	Used      float64
	Pending   float64
	Remaining float64
}

type AbsenceService struct {
	clock
	repo      repository.AbsenceRepository
	employees repository.EmployeeRepository
	counter   *WorkingDayCounter
	approval  MonthApproval
	audit     AuditRecorder
	logger    *logrus.Logger
}

func NewAbsenceService(
	repo repository.AbsenceRepository,
	employees repository.EmployeeRepository,
	counter *WorkingDayCounter,
	approval MonthApproval,
	audit AuditRecorder,
) *AbsenceService {
	return &AbsenceService{
		repo:      repo,
		employees: employees,
		counter:   counter,
		approval:  approval,
		audit:     audit,
		logger:    newLogger(),
	}
}

func (s *AbsenceService) load(id uint) (*models.Absence, error) {
	absence, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if absence == nil {
		return nil, errs.NotFound("отсутствие", id)
	}
	return absence, nil
}

func (s *AbsenceService) GetByID(id uint) (*models.Absence, error) {
	return s.load(id)
}

func (s *AbsenceService) employee(id uint) (*models.Employee, error) {
	employee, err := s.employees.GetByID(id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, errs.NotFound("сотрудник", id)
	}
	return employee, nil
}

// validate проверяет поля и пересечения; excludeID - редактируемая запись
func (s *AbsenceService) validate(input AbsenceInput, excludeID uint) error {
	verr := errs.NewValidationError()

	if _, ok := models.LookupAbsenceType(input.Type); !ok {
		verr.Add("type", fmt.Sprintf("неизвестный тип отсутствия %q", input.Type))
	}

	rangeOK := true
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		verr.Add("start_date", "не указан период")
		rangeOK = false
	} else if input.EndDate.Before(input.StartDate) {
		verr.Add("end_date", "дата окончания раньше даты начала")
		rangeOK = false
	}

	if input.Scope <= 0 || input.Scope > 1 {
		verr.Add("scope", "доля дня должна быть в диапазоне (0, 1]")
	} else if input.Scope < 1 && rangeOK && !input.StartDate.Equal(input.EndDate) {
		verr.Add("scope", "половина дня допускается только для одного дня")
	}

	if rangeOK {
		overlapping, err := s.repo.GetOverlapping(input.EmployeeID, input.StartDate, input.EndDate, excludeID)
		if err != nil {
			return err
		}
		for _, other := range overlapping {
			verr.Add("start_date", fmt.Sprintf("период пересекается с отсутствием #%d (%s)", other.ID, other.Type.Label()))
		}
	}

	return verr.OrNil()
}

func normalizeAbsenceInput(input AbsenceInput) AbsenceInput {
	if !input.StartDate.IsZero() {
		input.StartDate = models.DateOnly(input.StartDate)
	}
	if !input.EndDate.IsZero() {
		input.EndDate = models.DateOnly(input.EndDate)
	}
	return input
}

func (s *AbsenceService) computeDays(employee *models.Employee, input AbsenceInput) (float64, error) {
	workingDays, err := s.counter.Count(input.StartDate, input.EndDate, employee.Region)
	if err != nil {
		return 0, err
	}
	return workingDays * input.Scope, nil
}

// Create создает заявку на отсутствие в статусе pending
func (s *AbsenceService) Create(actorID uint, input AbsenceInput) (*models.Absence, error) {
	input = normalizeAbsenceInput(input)

	s.logger.WithFields(logrus.Fields{
		"employee_id": input.EmployeeID,
		"type":        input.Type,
		"start":       input.StartDate.Format(models.DateLayout),
		"end":         input.EndDate.Format(models.DateLayout),
		"scope":       input.Scope,
	}).Info("Creating absence")

	employee, err := s.employee(input.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(input, 0); err != nil {
		return nil, err
	}

	days, err := s.computeDays(employee, input)
	if err != nil {
		return nil, err
	}

	absence := &models.Absence{
		EmployeeID: input.EmployeeID,
		Type:       input.Type,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Scope:      input.Scope,
		Days:       days,
		Note:       input.Note,
		Status:     models.AbsenceStatusPending,
	}
	if err := s.repo.Create(absence); err != nil {
		s.logger.WithError(err).Error("Failed to create absence")
		return nil, err
	}

	recordAudit(s.audit, s.logger, actorID, "create", entityAbsence, absence.ID, nil, absence)
	return absence, nil
}

// Update изменяет отсутствие. Утвержденное отсутствие возвращается на повторное утверждение,
// а удаление из него прошедших дней утвержденного месяца запрещено.
func (s *AbsenceService) Update(actorID, id uint, input AbsenceInput) (*models.Absence, error) {
	absence, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if absence.Status == models.AbsenceStatusCancelled {
		return nil, errs.Forbidden("отсутствие", absence.Status, "update", "отмененное отсутствие нельзя изменить")
	}

	input.EmployeeID = absence.EmployeeID
	input = normalizeAbsenceInput(input)

	employee, err := s.employee(absence.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(input, absence.ID); err != nil {
		return nil, err
	}

	if absence.Status == models.AbsenceStatusApproved {
		if err := s.checkRemovedDays(absence, input); err != nil {
			return nil, err
		}
	}

	days, err := s.computeDays(employee, input)
	if err != nil {
		return nil, err
	}

	before := *absence
	absence.Type = input.Type
	absence.StartDate = input.StartDate
	absence.EndDate = input.EndDate
	absence.Scope = input.Scope
	absence.Days = days
	absence.Note = input.Note
	if absence.Status == models.AbsenceStatusApproved || absence.Status == models.AbsenceStatusRejected {
		absence.Status = models.AbsenceStatusPending
		absence.ApprovedBy = nil
		absence.ApprovedAt = nil
	}

	if err := s.repo.Update(absence); err != nil {
		s.logger.WithError(err).Error("Failed to update absence")
		return nil, err
	}

	recordAudit(s.audit, s.logger, actorID, "update", entityAbsence, absence.ID, before, absence)
	return absence, nil
}

// checkRemovedDays запрещает убирать из периода прошедшие дни утвержденных месяцев
func (s *AbsenceService) checkRemovedDays(old *models.Absence, input AbsenceInput) error {
	today := s.today()
	checked := map[[2]int]bool{}

	for d := old.StartDate; !d.After(old.EndDate); d = d.AddDate(0, 0, 1) {
		if !d.Before(input.StartDate) && !d.After(input.EndDate) {
			continue
		}
		if !d.Before(today) {
			continue
		}

		key := [2]int{d.Year(), int(d.Month())}
		approved, seen := checked[key]
		if !seen {
			var err error
			approved, err = s.approval.IsMonthApproved(old.EmployeeID, key[0], key[1])
			if err != nil {
				return err
			}
			checked[key] = approved
		}
		if approved {
			return errs.Forbidden("отсутствие", old.Status, "update",
				fmt.Sprintf("день %s относится к утвержденному месяцу", d.Format("02.01.2006")))
		}
	}
	return nil
}

func (s *AbsenceService) Delete(actorID, id uint) error {
	absence, err := s.load(id)
	if err != nil {
		return err
	}
	if absence.Status == models.AbsenceStatusApproved {
		return errs.Forbidden("отсутствие", absence.Status, "delete", "утвержденное отсутствие нельзя удалить")
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	recordAudit(s.audit, s.logger, actorID, "delete", entityAbsence, id, absence, nil)
	return nil
}

func (s *AbsenceService) Approve(actorID, id uint) (*models.Absence, error) {
	return s.transition(actorID, id, models.AbsenceStatusApproved, "approve", true)
}

func (s *AbsenceService) Reject(actorID, id uint) (*models.Absence, error) {
	return s.transition(actorID, id, models.AbsenceStatusRejected, "reject", true)
}

func (s *AbsenceService) Cancel(actorID, id uint) (*models.Absence, error) {
	return s.transition(actorID, id, models.AbsenceStatusCancelled, "cancel", false)
}

// transition - все решения принимаются только из pending
func (s *AbsenceService) transition(actorID, id uint, status, action string, stamp bool) (*models.Absence, error) {
	absence, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if absence.Status != models.AbsenceStatusPending {
		return nil, errs.Forbidden("отсутствие", absence.Status, action, "доступно только для заявок в ожидании")
	}

	before := *absence
	absence.Status = status
	if stamp {
		now := s.current()
		approver := actorID
		absence.ApprovedAt = &now
		absence.ApprovedBy = &approver
	}

	if err := s.repo.Update(absence); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":          absence.ID,
		"employee_id": absence.EmployeeID,
		"status":      status,
		"actor_id":    actorID,
	}).Info("Absence status changed")

	recordAudit(s.audit, s.logger, actorID, action, entityAbsence, absence.ID, before, absence)
	return absence, nil
}

// GetVacationStats считает использованные и ожидающие дни отпуска за год
func (s *AbsenceService) GetVacationStats(employeeID uint, year int, totalVacationDays float64) (*VacationStats, error) {
	absences, err := s.repo.GetByTypeAndYear(employeeID, models.AbsenceTypeVacation, year)
	if err != nil {
		return nil, err
	}

	yearStart := models.NewDate(year, time.January, 1)
	yearEnd := models.NewDate(year, time.December, 31)

	stats := &VacationStats{Year: year, Total: totalVacationDays}
	var employee *models.Employee
	for _, a := range absences {
		if a.Status != models.AbsenceStatusApproved && a.Status != models.AbsenceStatusPending {
			continue
		}

		days := a.Days
		// отпуск через Новый год учитывается только днями этого года
		if a.StartDate.Before(yearStart) || a.EndDate.After(yearEnd) {
			if employee == nil {
				if employee, err = s.employee(employeeID); err != nil {
					return nil, err
				}
			}
			from, to := models.DateOnly(a.StartDate), models.DateOnly(a.EndDate)
			if from.Before(yearStart) {
				from = yearStart
			}
			if to.After(yearEnd) {
				to = yearEnd
			}
			workingDays, err := s.counter.Count(from, to, employee.Region)
			if err != nil {
				return nil, err
			}
			days = workingDays * a.Scope
		}

		if a.Status == models.AbsenceStatusApproved {
			stats.Used += days
		} else {
			stats.Pending += days
		}
	}
	stats.Remaining = stats.Total - stats.Used
	return stats, nil
}

func (s *AbsenceService) GetByEmployee(employeeID uint) ([]*models.Absence, error) {
	return s.repo.GetByEmployee(employeeID)
}

func (s *AbsenceService) GetPending() ([]*models.Absence, error) {
	return s.repo.GetByStatus(models.AbsenceStatusPending)
}

func FormatVacationStats(stats *VacationStats) string {
	return fmt.Sprintf(`🏖️ Отпуск за %d год:

📅 Положено: %.1f дн.
✅ Использовано: %.1f дн.
⏳ На согласовании: %.1f дн.
📊 Остаток: %.1f дн.`,
		stats.Year, stats.Total, stats.Used, stats.Pending, stats.Remaining)
}
