package service

import (
	"fmt"
	"strconv"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"
	"work-time-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	SettingMaxDailyHours      = "max_daily_hours"
	SettingMinBreak6h         = "min_break_6h"
	SettingMinBreak9h         = "min_break_9h"
	SettingAllowFutureEntries = "allow_future_entries"
	SettingArchiveDestination = "archive_destination"
	SettingArchivePath        = "archive_path"
)

// SettingsDefaults - значения, если ключ отсутствует в таблице settings
type SettingsDefaults struct {
	MaxDailyHours      float64
	MinBreak6h         int
	MinBreak9h         int
	AllowFutureEntries bool
	ArchiveDestination string
	ArchivePath        string
}

var settingTypes = map[string]string{
	SettingMaxDailyHours:      models.SettingTypeFloat,
	SettingMinBreak6h:         models.SettingTypeInt,
	SettingMinBreak9h:         models.SettingTypeInt,
	SettingAllowFutureEntries: models.SettingTypeBool,
	SettingArchiveDestination: models.SettingTypeString,
	SettingArchivePath:        models.SettingTypeString,
}

type SettingsService struct {
	repo     repository.SettingRepository
	defaults SettingsDefaults
	logger   *logrus.Logger
}

func NewSettingsService(repo repository.SettingRepository, defaults SettingsDefaults) *SettingsService {
	return &SettingsService{
		repo:     repo,
		defaults: defaults,
		logger:   newLogger(),
	}
}

func (s *SettingsService) lookup(key string) (string, bool) {
	setting, err := s.repo.Get(key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to read setting, using default")
		return "", false
	}
	if setting == nil {
		return "", false
	}
	return setting.Value, true
}

func (s *SettingsService) getFloat(key string, def float64) float64 {
	if raw, ok := s.lookup(key); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
		s.logger.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("Malformed float setting")
	}
	return def
}

func (s *SettingsService) getInt(key string, def int) int {
	if raw, ok := s.lookup(key); ok {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
		s.logger.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("Malformed int setting")
	}
	return def
}

func (s *SettingsService) getBool(key string, def bool) bool {
	if raw, ok := s.lookup(key); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
		s.logger.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("Malformed bool setting")
	}
	return def
}

func (s *SettingsService) getString(key string, def string) string {
	if raw, ok := s.lookup(key); ok {
		return raw
	}
	return def
}

func (s *SettingsService) MaxDailyHours() float64 {
	return s.getFloat(SettingMaxDailyHours, s.defaults.MaxDailyHours)
}

func (s *SettingsService) MinBreak6h() int {
	return s.getInt(SettingMinBreak6h, s.defaults.MinBreak6h)
}

func (s *SettingsService) MinBreak9h() int {
	return s.getInt(SettingMinBreak9h, s.defaults.MinBreak9h)
}

func (s *SettingsService) AllowFutureEntries() bool {
	return s.getBool(SettingAllowFutureEntries, s.defaults.AllowFutureEntries)
}

func (s *SettingsService) ArchiveDestination() string {
	return s.getString(SettingArchiveDestination, s.defaults.ArchiveDestination)
}

func (s *SettingsService) ArchivePath() string {
	return s.getString(SettingArchivePath, s.defaults.ArchivePath)
}

// Set сохраняет значение, проверяя тип по известному ключу
func (s *SettingsService) Set(key, value string) error {
	settingType, ok := settingTypes[key]
	if !ok {
		return errs.Invalid("key", fmt.Sprintf("неизвестная настройка %q", key))
	}

	var err error
	switch settingType {
	case models.SettingTypeFloat:
		var v float64
		if v, err = strconv.ParseFloat(value, 64); err == nil && v <= 0 {
			return errs.Invalid("value", "значение должно быть положительным")
		}
	case models.SettingTypeInt:
		var v int
		if v, err = strconv.Atoi(value); err == nil && v < 0 {
			return errs.Invalid("value", "значение не может быть отрицательным")
		}
	case models.SettingTypeBool:
		_, err = strconv.ParseBool(value)
	}
	if err != nil {
		return errs.Invalid("value", fmt.Sprintf("ожидается значение типа %s", settingType))
	}

	if err := s.repo.Upsert(&models.Setting{Key: key, Value: value, Type: settingType}); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}

	s.logger.WithFields(logrus.Fields{"key": key, "value": value}).Info("Setting updated")
	return nil
}

// Effective возвращает действующие значения всех настроек для отображения
func (s *SettingsService) Effective() map[string]string {
	return map[string]string{
		SettingMaxDailyHours:      strconv.FormatFloat(s.MaxDailyHours(), 'f', -1, 64),
		SettingMinBreak6h:         strconv.Itoa(s.MinBreak6h()),
		SettingMinBreak9h:         strconv.Itoa(s.MinBreak9h()),
		SettingAllowFutureEntries: strconv.FormatBool(s.AllowFutureEntries()),
		SettingArchiveDestination: s.ArchiveDestination(),
		SettingArchivePath:        s.ArchivePath(),
	}
}
