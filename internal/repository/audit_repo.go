package repository

import (
	"work-time-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(event *models.AuditEvent) error
	GetByEntity(entityType string, entityID uint) ([]models.AuditEvent, error)
}

type GormAuditRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAuditRepository(db *gorm.DB) (*GormAuditRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.AuditEvent{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate audit_events table")
		return nil, err
	}

	logger.Info("Audit repository initialized")
	return &GormAuditRepository{db: db, logger: logger}, nil
}

func (r *GormAuditRepository) Create(event *models.AuditEvent) error {
	return r.db.Create(event).Error
}

func (r *GormAuditRepository) GetByEntity(entityType string, entityID uint) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").
		Find(&events).Error
	return events, err
}
