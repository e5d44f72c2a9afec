package service

import (
	"encoding/json"
	"fmt"
	"work-time-bot/internal/models"
	"work-time-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

// AuditRecorder получает снимки до/после каждой успешной мутации
type AuditRecorder interface {
	Record(actorID uint, action, entityType string, entityID uint, before, after any) error
}

type AuditService struct {
	repo   repository.AuditRepository
	logger *logrus.Logger
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo, logger: newLogger()}
}

func (s *AuditService) Record(actorID uint, action, entityType string, entityID uint, before, after any) error {
	event := &models.AuditEvent{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}

	if before != nil {
		payload, err := json.Marshal(before)
		if err != nil {
			return fmt.Errorf("failed to marshal before snapshot: %w", err)
		}
		event.BeforeJSON = string(payload)
	}
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return fmt.Errorf("failed to marshal after snapshot: %w", err)
		}
		event.AfterJSON = string(payload)
	}

	if err := s.repo.Create(event); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":    actorID,
		"action":      action,
		"entity_type": entityType,
		"entity_id":   entityID,
	}).Debug("Audit event recorded")
	return nil
}

func (s *AuditService) History(entityType string, entityID uint) ([]models.AuditEvent, error) {
	return s.repo.GetByEntity(entityType, entityID)
}

// recordAudit - ошибка аудита не отменяет уже выполненный переход
func recordAudit(audit AuditRecorder, logger *logrus.Logger, actorID uint, action, entityType string, entityID uint, before, after any) {
	if audit == nil {
		return
	}
	if err := audit.Record(actorID, action, entityType, entityID, before, after); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"action":    action,
			"entity":    entityType,
			"entity_id": entityID,
		}).Warn("Failed to record audit event")
	}
}
