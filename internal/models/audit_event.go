package models

import "time"

type AuditEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    uint      `gorm:"index" json:"actor_id"`
	Action     string    `gorm:"type:varchar(40);not null" json:"action"`
	EntityType string    `gorm:"type:varchar(40);not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   uint      `gorm:"index:idx_audit_entity" json:"entity_id"`
	BeforeJSON string    `json:"before,omitempty"`
	AfterJSON  string    `json:"after,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
