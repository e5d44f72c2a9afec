package repository

import (
	"errors"
	"work-time-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	Get(key string) (*models.Setting, error)
	GetAll() ([]models.Setting, error)
	Upsert(setting *models.Setting) error
}

type GormSettingRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormSettingRepository(db *gorm.DB) (*GormSettingRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate settings table")
		return nil, err
	}

	logger.Info("Setting repository initialized")
	return &GormSettingRepository{db: db, logger: logger}, nil
}

func (r *GormSettingRepository) Get(key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.Where(&models.Setting{Key: key}).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *GormSettingRepository) GetAll() ([]models.Setting, error) {
	var settings []models.Setting
	err := r.db.Order("id").Find(&settings).Error
	return settings, err
}

func (r *GormSettingRepository) Upsert(setting *models.Setting) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
	}).Create(setting).Error
}
