package models

import (
	"time"

	"github.com/google/uuid"
)

const AuditTable = "audit"

type Operation string

const (
	OperationInsert Operation = "INSERT"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// AuditRecord is append-only. Rows are written by the audit sink inside
// the transaction of the mutation they describe and never modified.
type AuditRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Table     string    `gorm:"column:table_name;type:varchar(50);not null;index"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Operation Operation `gorm:"type:varchar(6);not null"`
	Time      time.Time `gorm:"column:time;not null"`
}

func (AuditRecord) TableName() string { return AuditTable }

func (r *AuditRecord) AsJSON() map[string]any {
	return map[string]any{
		"id":        r.ID,
		"table":     r.Table,
		"item_id":   r.ItemID,
		"operation": r.Operation,
		"time":      r.Time,
	}
}
