package repository

import (
	"errors"
	"time"
	"work-time-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AbsenceRepository interface {
	Create(absence *models.Absence) error
	Update(absence *models.Absence) error
	GetByID(id uint) (*models.Absence, error)
	Delete(id uint) error
	GetByEmployee(employeeID uint) ([]*models.Absence, error)
	GetByStatus(status string) ([]*models.Absence, error)
	// GetOverlapping возвращает не отмененные отсутствия, пересекающие диапазон
	GetOverlapping(employeeID uint, start, end time.Time, excludeID uint) ([]*models.Absence, error)
	GetApprovedInRange(employeeID uint, start, end time.Time) ([]*models.Absence, error)
	GetByTypeAndYear(employeeID uint, absenceType models.AbsenceType, year int) ([]*models.Absence, error)
}

type GormAbsenceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAbsenceRepository(db *gorm.DB) (*GormAbsenceRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Absence{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate absences table")
		return nil, err
	}

	logger.Info("Absence repository initialized")
	return &GormAbsenceRepository{db: db, logger: logger}, nil
}

func (r *GormAbsenceRepository) Create(absence *models.Absence) error {
	return r.db.Create(absence).Error
}

func (r *GormAbsenceRepository) Update(absence *models.Absence) error {
	return r.db.Save(absence).Error
}

func (r *GormAbsenceRepository) GetByID(id uint) (*models.Absence, error) {
	var absence models.Absence
	err := r.db.First(&absence, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &absence, nil
}

func (r *GormAbsenceRepository) Delete(id uint) error {
	return r.db.Delete(&models.Absence{}, id).Error
}

func (r *GormAbsenceRepository) GetByEmployee(employeeID uint) ([]*models.Absence, error) {
	var absences []*models.Absence
	err := r.db.Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&absences).Error
	return absences, err
}

func (r *GormAbsenceRepository) GetByStatus(status string) ([]*models.Absence, error) {
	var absences []*models.Absence
	err := r.db.Where("status = ?", status).
		Order("start_date ASC").
		Find(&absences).Error
	return absences, err
}

func (r *GormAbsenceRepository) GetOverlapping(employeeID uint, start, end time.Time, excludeID uint) ([]*models.Absence, error) {
	var absences []*models.Absence
	query := r.db.Where("employee_id = ? AND status <> ? AND start_date <= ? AND end_date >= ?",
		employeeID, models.AbsenceStatusCancelled, models.DateOnly(end), models.DateOnly(start))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Find(&absences).Error
	return absences, err
}

func (r *GormAbsenceRepository) GetApprovedInRange(employeeID uint, start, end time.Time) ([]*models.Absence, error) {
	var absences []*models.Absence
	err := r.db.Where("employee_id = ? AND status = ? AND start_date <= ? AND end_date >= ?",
		employeeID, models.AbsenceStatusApproved, models.DateOnly(end), models.DateOnly(start)).
		Order("start_date ASC").
		Find(&absences).Error
	return absences, err
}

func (r *GormAbsenceRepository) GetByTypeAndYear(employeeID uint, absenceType models.AbsenceType, year int) ([]*models.Absence, error) {
	start := models.NewDate(year, time.January, 1)
	end := models.NewDate(year, time.December, 31)

	var absences []*models.Absence
	// все отсутствия, пересекающие год, включая переходящие через Новый год
	err := r.db.Where("employee_id = ? AND type = ? AND start_date <= ? AND end_date >= ?",
		employeeID, absenceType, end, start).
		Order("start_date ASC").
		Find(&absences).Error
	return absences, err
}
