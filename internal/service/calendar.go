package service

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"
	"work-time-bot/internal/repository"
	"work-time-bot/pkg/holidays"

	"github.com/sirupsen/logrus"
)

const (
	minHolidayYear = 1583
	maxHolidayYear = 9999
)

type CalendarService struct {
	repo   repository.HolidayRepository
	logger *logrus.Logger
	mu     sync.Mutex
}

func NewCalendarService(repo repository.HolidayRepository) *CalendarService {
	return &CalendarService{repo: repo, logger: newLogger()}
}

func validateRegion(region string) error {
	if !holidays.IsKnownRegion(region) {
		return errs.Invalid("region", fmt.Sprintf("неизвестный регион %q, допустимые: %s", region, strings.Join(holidays.Regions, ", ")))
	}
	return nil
}

// ensureYears генерирует праздники для каждого года [from, to], по которому их еще нет.
// Неизвестный регион и годы вне таблиц пропускаются: для них просто нет праздников.
func (s *CalendarService) ensureYears(from, to int, region string) error {
	if !holidays.IsKnownRegion(region) {
		return nil
	}
	for year := from; year <= to; year++ {
		if year < minHolidayYear || year > maxHolidayYear {
			continue
		}
		if err := s.EnsureYear(year, region); err != nil {
			return fmt.Errorf("failed to prepare holidays for %d: %w", year, err)
		}
	}
	return nil
}

// IsHoliday проверяет, есть ли праздник (полный или сокращенный) на дату
func (s *CalendarService) IsHoliday(date time.Time, region string) (bool, error) {
	holiday, err := s.HolidayOn(date, region)
	if err != nil {
		return false, err
	}
	return holiday != nil, nil
}

func (s *CalendarService) HolidayOn(date time.Time, region string) (*models.Holiday, error) {
	if err := s.ensureYears(date.Year(), date.Year(), region); err != nil {
		return nil, err
	}
	return s.repo.GetByDate(date, region)
}

func (s *CalendarService) HolidaysInRange(start, end time.Time, region string) ([]models.Holiday, error) {
	if err := s.ensureYears(start.Year(), end.Year(), region); err != nil {
		return nil, err
	}
	return s.repo.GetInRange(start, end, region)
}

func (s *CalendarService) HolidaysForYear(year int, region string) ([]models.Holiday, error) {
	if err := s.ensureYears(year, year, region); err != nil {
		return nil, err
	}
	return s.repo.GetByYear(year, region)
}

// Generate пересоздает праздники года для региона: удаляет все существующие
// (включая ручные) и сохраняет фиксированные и пасхальные
func (s *CalendarService) Generate(year int, region string) ([]models.Holiday, error) {
	if err := validateRegion(region); err != nil {
		return nil, err
	}
	if year < minHolidayYear || year > maxHolidayYear {
		return nil, errs.Invalid("year", "год вне допустимого диапазона")
	}

	defs, err := holidays.Build(year, region)
	if err != nil {
		return nil, err
	}

	result := make([]models.Holiday, 0, len(defs))
	for _, d := range defs {
		result = append(result, models.Holiday{
			Date:   d.Date,
			Region: region,
			Year:   year,
			Name:   d.Name,
			Scope:  d.Scope,
		})
	}

	if err := s.repo.ReplaceYear(year, region, result); err != nil {
		s.logger.WithError(err).Error("Failed to replace holidays")
		return nil, fmt.Errorf("failed to store holidays: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"year":   year,
		"region": region,
		"count":  len(result),
	}).Info("Holidays generated")
	return result, nil
}

// EnsureYear генерирует праздники, если для года еще нет ни одной записи.
// Год с импортированными или ручными праздниками считается заполненным.
func (s *CalendarService) EnsureYear(year int, region string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.repo.CountByYear(year, region)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = s.Generate(year, region)
	return err
}

// AddManual создает или перезаписывает ручной праздник; только так появляются сокращенные дни
func (s *CalendarService) AddManual(date time.Time, region, name string, scope float64) (*models.Holiday, error) {
	verr := errs.NewValidationError()
	if !holidays.IsKnownRegion(region) {
		verr.Add("region", fmt.Sprintf("неизвестный регион %q", region))
	}
	if strings.TrimSpace(name) == "" {
		verr.Add("name", "название не может быть пустым")
	}
	if scope <= 0 || scope > 1 {
		verr.Add("scope", "доля дня должна быть в диапазоне (0, 1]")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	date = models.DateOnly(date)
	holiday := &models.Holiday{
		Date:     date,
		Region:   region,
		Year:     date.Year(),
		Name:     strings.TrimSpace(name),
		Scope:    scope,
		IsManual: true,
	}
	if err := s.repo.Upsert(holiday); err != nil {
		return nil, fmt.Errorf("failed to store holiday: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"date":   date.Format(models.DateLayout),
		"region": region,
		"scope":  scope,
	}).Info("Manual holiday stored")
	return holiday, nil
}

func (s *CalendarService) Delete(id uint) error {
	holiday, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if holiday == nil {
		return errs.NotFound("праздник", id)
	}
	return s.repo.Delete(id)
}

// ImportFromJSON загружает производственный календарь как ручные праздники
func (s *CalendarService) ImportFromJSON(filePath, region string) (int, error) {
	if err := validateRegion(region); err != nil {
		return 0, err
	}

	_, days, err := holidays.ParseCalendarJSON(filePath)
	if err != nil {
		return 0, err
	}

	records := make([]models.Holiday, 0, len(days))
	for _, d := range days {
		name := "Выходной по календарю"
		if d.Scope < 1 {
			name = "Сокращенный день"
		}
		records = append(records, models.Holiday{
			Date:     d.Date,
			Region:   region,
			Year:     d.Date.Year(),
			Name:     name,
			Scope:    d.Scope,
			IsManual: true,
		})
	}

	if err := s.repo.BulkUpsert(records); err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"file":   filePath,
		"region": region,
		"count":  len(records),
	}).Info("Calendar imported")
	return len(records), nil
}

func FormatHolidays(year int, region string, list []models.Holiday) string {
	if len(list) == 0 {
		return fmt.Sprintf("📅 Праздники %d (%s) не найдены.", year, region)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Праздники %d (%s):\n\n", year, region)
	for _, h := range list {
		line := fmt.Sprintf("#%d %s %s", h.ID, h.Date.Format("02.01.2006"), h.Name)
		if h.IsHalfDay() {
			line += fmt.Sprintf(" (%.0f%% дня)", h.Scope*100)
		}
		if h.IsManual {
			line += " ✍️"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
