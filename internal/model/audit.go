package model

import "time"

// AuditEntry attributes an admin action to the acting user.
type AuditEntry struct {
	ID        uint64    `json:"id"`         // audit_log.id
	ActorID   uint64    `json:"actor_id"`   // audit_log.actor_id
	Action    string    `json:"action"`     // audit_log.action
	Entity    string    `json:"entity"`     // audit_log.entity
	EntityID  uint64    `json:"entity_id"`  // audit_log.entity_id
	Detail    string    `json:"detail"`     // audit_log.detail
	CreatedAt time.Time `json:"created_at"` // audit_log.created_at
}
