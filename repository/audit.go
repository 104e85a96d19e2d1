package repository

import (
	"context"
	"fmt"
	"time"

	"customerhub-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditEntry struct {
	Table     string
	ItemID    uuid.UUID
	Operation models.Operation
}

// AuditSink records a mutation using the transaction that performed it, so
// the audit row commits or rolls back together with the change.
type AuditSink interface {
	Record(ctx context.Context, tx *gorm.DB, entry AuditEntry) error
}

// Auditor is the AuditSink backed by the audit table.
type Auditor struct {
	now func() time.Time
}

func NewAuditor() *Auditor {
	return &Auditor{now: func() time.Time { return time.Now().UTC() }}
}

func (a *Auditor) Record(ctx context.Context, tx *gorm.DB, entry AuditEntry) error {
	if entry.Table == models.AuditTable {
		return nil
	}
	switch entry.Operation {
	case models.OperationInsert, models.OperationUpdate, models.OperationDelete:
	default:
		return fmt.Errorf("record audit: unsupported operation %q", entry.Operation)
	}

	record := models.AuditRecord{
		ID:        uuid.New(),
		Table:     entry.Table,
		ItemID:    entry.ItemID,
		Operation: entry.Operation,
		Time:      a.now(),
	}
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

type AuditFilter struct {
	Table     string
	ItemID    *uuid.UUID
	Operation models.Operation
	Since     *time.Time
}

// ListAuditRecords returns matching audit rows oldest first.
func ListAuditRecords(ctx context.Context, db *gorm.DB, filter AuditFilter) ([]models.AuditRecord, error) {
	query := db.WithContext(ctx).Model(&models.AuditRecord{})
	if filter.Table != "" {
		query = query.Where("table_name = ?", filter.Table)
	}
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.Operation != "" {
		query = query.Where("operation = ?", filter.Operation)
	}
	if filter.Since != nil {
		query = query.Where(`"time" >= ?`, *filter.Since)
	}

	records := []models.AuditRecord{}
	if err := query.Order(`"time" ASC`).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	return records, nil
}
