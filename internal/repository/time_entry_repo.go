package repository

import (
	"errors"
	"time"
	"work-time-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TimeEntryRepository interface {
	Create(entry *models.TimeEntry) error
	Update(entry *models.TimeEntry) error
	GetByID(id uint) (*models.TimeEntry, error)
	Delete(id uint) error
	GetByEmployeeInRange(employeeID uint, start, end time.Time) ([]*models.TimeEntry, error)
	GetByEmployeeAndMonth(employeeID uint, year, month int) ([]*models.TimeEntry, error)
	GetByStatus(status string) ([]*models.TimeEntry, error)
	CountByEmployeeAndMonth(employeeID uint, year, month int) (total int64, approved int64, err error)
}

type GormTimeEntryRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormTimeEntryRepository(db *gorm.DB) (*GormTimeEntryRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.TimeEntry{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate time_entries table")
		return nil, err
	}

	logger.Info("Time entry repository initialized")
	return &GormTimeEntryRepository{db: db, logger: logger}, nil
}

func (r *GormTimeEntryRepository) Create(entry *models.TimeEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create time entry")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":          entry.ID,
		"employee_id": entry.EmployeeID,
		"date":        entry.Date.Format(models.DateLayout),
	}).Debug("Time entry created")
	return nil
}

func (r *GormTimeEntryRepository) Update(entry *models.TimeEntry) error {
	return r.db.Save(entry).Error
}

func (r *GormTimeEntryRepository) GetByID(id uint) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := r.db.First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *GormTimeEntryRepository) Delete(id uint) error {
	return r.db.Delete(&models.TimeEntry{}, id).Error
}

func (r *GormTimeEntryRepository) GetByEmployeeInRange(employeeID uint, start, end time.Time) ([]*models.TimeEntry, error) {
	var entries []*models.TimeEntry
	err := r.db.Where("employee_id = ? AND date BETWEEN ? AND ?",
		employeeID, models.DateOnly(start), models.DateOnly(end)).
		Order("date ASC, start_time ASC").
		Find(&entries).Error
	return entries, err
}

func (r *GormTimeEntryRepository) GetByEmployeeAndMonth(employeeID uint, year, month int) ([]*models.TimeEntry, error) {
	start, end := models.MonthBounds(year, month)
	return r.GetByEmployeeInRange(employeeID, start, end)
}

func (r *GormTimeEntryRepository) GetByStatus(status string) ([]*models.TimeEntry, error) {
	var entries []*models.TimeEntry
	err := r.db.Where("status = ?", status).
		Order("employee_id ASC, date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *GormTimeEntryRepository) CountByEmployeeAndMonth(employeeID uint, year, month int) (int64, int64, error) {
	start, end := models.MonthBounds(year, month)
	base := r.db.Model(&models.TimeEntry{}).
		Where("employee_id = ? AND date BETWEEN ? AND ?", employeeID, start, end).
		Session(&gorm.Session{})

	var total, approved int64
	if err := base.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := base.Where("status = ?", models.EntryStatusApproved).Count(&approved).Error; err != nil {
		return 0, 0, err
	}
	return total, approved, nil
}
