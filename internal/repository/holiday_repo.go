package repository

import (
	"errors"
	"time"
	"work-time-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HolidayRepository interface {
	GetByID(id uint) (*models.Holiday, error)
	GetByDate(date time.Time, region string) (*models.Holiday, error)
	GetInRange(start, end time.Time, region string) ([]models.Holiday, error)
	GetByYear(year int, region string) ([]models.Holiday, error)
	CountByYear(year int, region string) (int64, error)
	// ReplaceYear удаляет все праздники (year, region) и сохраняет новые одной транзакцией
	ReplaceYear(year int, region string, holidays []models.Holiday) error
	Upsert(holiday *models.Holiday) error
	BulkUpsert(holidays []models.Holiday) error
	Delete(id uint) error
}

type GormHolidayRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormHolidayRepository(db *gorm.DB) (*GormHolidayRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Holiday{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate holidays table")
		return nil, err
	}

	logger.Info("Holiday repository initialized")
	return &GormHolidayRepository{db: db, logger: logger}, nil
}

func (r *GormHolidayRepository) GetByID(id uint) (*models.Holiday, error) {
	var holiday models.Holiday
	err := r.db.First(&holiday, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (r *GormHolidayRepository) GetByDate(date time.Time, region string) (*models.Holiday, error) {
	var holiday models.Holiday
	err := r.db.Where("date = ? AND region = ?", models.DateOnly(date), region).First(&holiday).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (r *GormHolidayRepository) GetInRange(start, end time.Time, region string) ([]models.Holiday, error) {
	var holidays []models.Holiday
	err := r.db.Where("region = ? AND date BETWEEN ? AND ?", region, models.DateOnly(start), models.DateOnly(end)).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *GormHolidayRepository) GetByYear(year int, region string) ([]models.Holiday, error) {
	var holidays []models.Holiday
	err := r.db.Where("year = ? AND region = ?", year, region).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *GormHolidayRepository) CountByYear(year int, region string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Holiday{}).Where("year = ? AND region = ?", year, region).Count(&count).Error
	return count, err
}

func (r *GormHolidayRepository) ReplaceYear(year int, region string, holidays []models.Holiday) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("year = ? AND region = ?", year, region).Delete(&models.Holiday{})
		if result.Error != nil {
			return result.Error
		}

		r.logger.WithFields(logrus.Fields{
			"year":    year,
			"region":  region,
			"deleted": result.RowsAffected,
			"created": len(holidays),
		}).Info("Replacing holidays")

		if len(holidays) == 0 {
			return nil
		}
		return tx.Create(&holidays).Error
	})
}

func (r *GormHolidayRepository) upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "region"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "scope", "is_manual", "year", "updated_at"}),
	}
}

func (r *GormHolidayRepository) Upsert(holiday *models.Holiday) error {
	return r.db.Clauses(r.upsertClause()).Create(holiday).Error
}

func (r *GormHolidayRepository) BulkUpsert(holidays []models.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}
	return r.db.Clauses(r.upsertClause()).Create(&holidays).Error
}

func (r *GormHolidayRepository) Delete(id uint) error {
	return r.db.Delete(&models.Holiday{}, id).Error
}
