package service

import (
	"fmt"
	"strings"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"
	"work-time-bot/internal/repository"
	"work-time-bot/pkg/holidays"

	"github.com/sirupsen/logrus"
)

// EmployeeDefaults - параметры новых сотрудников
type EmployeeDefaults struct {
	Region       string
	WeeklyHours  float64
	VacationDays float64
}

type EmployeeService struct {
	repo     repository.EmployeeRepository
	defaults EmployeeDefaults
	logger   *logrus.Logger
}

func NewEmployeeService(repo repository.EmployeeRepository, defaults EmployeeDefaults) *EmployeeService {
	return &EmployeeService{repo: repo, defaults: defaults, logger: newLogger()}
}

// Register создает сотрудника с ролью client и параметрами по умолчанию
func (s *EmployeeService) Register(chatID int64, username, firstName, lastName string) (*models.Employee, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, errs.Invalid("first_name", "имя не может быть пустым")
	}

	employee := &models.Employee{
		ChatID:       chatID,
		Username:     username,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Role:         models.RoleClient,
		WeeklyHours:  s.defaults.WeeklyHours,
		Region:       s.defaults.Region,
		VacationDays: s.defaults.VacationDays,
	}

	if err := s.repo.Create(employee); err != nil {
		return nil, fmt.Errorf("ошибка создания профиля: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":      employee.ID,
		"chat_id": chatID,
	}).Info("Employee registered")
	return employee, nil
}

// GetByChatID возвращает сотрудника или NotFoundError
func (s *EmployeeService) GetByChatID(chatID int64) (*models.Employee, error) {
	employee, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	if employee == nil {
		return nil, errs.NotFound("сотрудник с chat id", uint(chatID))
	}
	return employee, nil
}

func (s *EmployeeService) GetByID(id uint) (*models.Employee, error) {
	employee, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, errs.NotFound("сотрудник", id)
	}
	return employee, nil
}

// UpdateName меняет имя и фамилию в профиле
func (s *EmployeeService) UpdateName(chatID int64, username, firstName, lastName string) (*models.Employee, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, errs.Invalid("first_name", "имя не может быть пустым")
	}

	employee, err := s.GetByChatID(chatID)
	if err != nil {
		return nil, err
	}

	employee.Username = username
	employee.FirstName = strings.TrimSpace(firstName)
	employee.LastName = strings.TrimSpace(lastName)
	if err := s.repo.Update(employee); err != nil {
		return nil, fmt.Errorf("ошибка обновления профиля: %w", err)
	}
	return employee, nil
}

// WorkParams - рабочие параметры, которые меняет администратор
type WorkParams struct {
	WeeklyHours  float64
	Region       string
	VacationDays float64
}

func (s *EmployeeService) SetWorkParams(targetChatID int64, params WorkParams) (*models.Employee, error) {
	verr := errs.NewValidationError()
	if params.WeeklyHours <= 0 || params.WeeklyHours > 80 {
		verr.Add("weekly_hours", "часы в неделю должны быть в диапазоне (0, 80]")
	}
	if !holidays.IsKnownRegion(params.Region) {
		verr.Add("region", fmt.Sprintf("неизвестный регион %q", params.Region))
	}
	if params.VacationDays < 0 {
		verr.Add("vacation_days", "дни отпуска не могут быть отрицательными")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	employee, err := s.GetByChatID(targetChatID)
	if err != nil {
		return nil, err
	}

	employee.WeeklyHours = params.WeeklyHours
	employee.Region = params.Region
	employee.VacationDays = params.VacationDays
	if err := s.repo.Update(employee); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id":       targetChatID,
		"weekly_hours":  params.WeeklyHours,
		"region":        params.Region,
		"vacation_days": params.VacationDays,
	}).Info("Employee work params updated")
	return employee, nil
}

func (s *EmployeeService) UpdateRole(targetChatID int64, role string) error {
	if role != models.RoleAdmin && role != models.RoleClient {
		return errs.Invalid("role", "роль должна быть admin или client")
	}
	if _, err := s.GetByChatID(targetChatID); err != nil {
		return err
	}
	return s.repo.UpdateRole(targetChatID, role)
}

func (s *EmployeeService) IsAdmin(chatID int64) (bool, error) {
	employee, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return false, err
	}
	return employee != nil && employee.IsAdmin(), nil
}

func (s *EmployeeService) GetAll() ([]*models.Employee, error) {
	return s.repo.GetAll()
}

// InitializeAdmin создает или повышает администратора из конфига
func (s *EmployeeService) InitializeAdmin(adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(adminChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.repo.UpdateRole(adminChatID, models.RoleAdmin)
	}

	return s.repo.Create(&models.Employee{
		ChatID:       adminChatID,
		Username:     "admin",
		FirstName:    "Администратор",
		Role:         models.RoleAdmin,
		WeeklyHours:  s.defaults.WeeklyHours,
		Region:       s.defaults.Region,
		VacationDays: s.defaults.VacationDays,
	})
}

// FormatEmployeeInfo форматирует профиль для вывода
func FormatEmployeeInfo(employee *models.Employee) string {
	var lines []string

	lines = append(lines, "👤 Профиль сотрудника:")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("🆔 ID чата: %d", employee.ChatID))
	if employee.Username != "" {
		lines = append(lines, fmt.Sprintf("📛 Никнейм: @%s", employee.Username))
	}
	lines = append(lines, fmt.Sprintf("👨‍💼 Имя: %s", employee.FullName()))

	roleEmoji := "👤"
	if employee.IsAdmin() {
		roleEmoji = "👑"
	}
	lines = append(lines, fmt.Sprintf("%s Роль: %s", roleEmoji, employee.Role))
	lines = append(lines, fmt.Sprintf("⏰ Часов в неделю: %.1f", employee.WeeklyHours))
	lines = append(lines, fmt.Sprintf("🗺️ Регион: %s", employee.Region))
	lines = append(lines, fmt.Sprintf("🏖️ Отпуск в год: %.1f дн.", employee.VacationDays))

	return strings.Join(lines, "\n")
}

func FormatEmployees(employees []*models.Employee) string {
	if len(employees) == 0 {
		return "📭 Список сотрудников пуст."
	}

	lines := []string{"📋 Все сотрудники:", ""}
	for i, e := range employees {
		roleEmoji := "👤"
		if e.IsAdmin() {
			roleEmoji = "👑"
		}
		line := fmt.Sprintf("%d. %s %s", i+1, roleEmoji, e.FullName())
		if e.Username != "" {
			line += fmt.Sprintf(" (@%s)", e.Username)
		}
		line += fmt.Sprintf(" - ID: %d, %.1f ч/нед, %s", e.ChatID, e.WeeklyHours, e.Region)
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
