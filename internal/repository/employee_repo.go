package repository

import (
	"errors"
	"work-time-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(employee *models.Employee) error
	Update(employee *models.Employee) error
	GetByID(id uint) (*models.Employee, error)
	GetByChatID(chatID int64) (*models.Employee, error)
	GetAll() ([]*models.Employee, error)
	GetAdmins() ([]*models.Employee, error)
	UpdateRole(chatID int64, role string) error
	Delete(chatID int64) error
}

type GormEmployeeRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormEmployeeRepository(db *gorm.DB) (*GormEmployeeRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Employee{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate employees table")
		return nil, err
	}

	logger.Info("Employee repository initialized")
	return &GormEmployeeRepository{db: db, logger: logger}, nil
}

func (r *GormEmployeeRepository) Create(employee *models.Employee) error {
	var count int64
	if err := r.db.Model(&models.Employee{}).Where("chat_id = ?", employee.ChatID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("сотрудник уже существует")
	}

	if err := r.db.Create(employee).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create employee")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      employee.ID,
		"chat_id": employee.ChatID,
	}).Info("Employee created")
	return nil
}

func (r *GormEmployeeRepository) Update(employee *models.Employee) error {
	return r.db.Save(employee).Error
}

func (r *GormEmployeeRepository) GetByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.First(&employee, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *GormEmployeeRepository) GetByChatID(chatID int64) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.Where("chat_id = ?", chatID).First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *GormEmployeeRepository) GetAll() ([]*models.Employee, error) {
	var employees []*models.Employee
	err := r.db.Order("id").Find(&employees).Error
	return employees, err
}

func (r *GormEmployeeRepository) GetAdmins() ([]*models.Employee, error) {
	var employees []*models.Employee
	err := r.db.Where("role = ?", models.RoleAdmin).Order("id").Find(&employees).Error
	return employees, err
}

func (r *GormEmployeeRepository) UpdateRole(chatID int64, role string) error {
	result := r.db.Model(&models.Employee{}).
		Where("chat_id = ?", chatID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("сотрудник не найден")
	}
	return nil
}

func (r *GormEmployeeRepository) Delete(chatID int64) error {
	result := r.db.Where("chat_id = ?", chatID).Delete(&models.Employee{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("сотрудник не найден")
	}
	return nil
}
