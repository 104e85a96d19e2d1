// services/audit_digest_service.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"customerhub-backend/models"
	"customerhub-backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DigestRow counts the audit records of one table and operation.
type DigestRow struct {
	Table     string           `gorm:"column:table_name"`
	Operation models.Operation `gorm:"column:operation"`
	Count     int64            `gorm:"column:count"`
}

// AuditDigestService summarizes the audit trail. It only reads.
type AuditDigestService struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditDigestService(db *gorm.DB, logger *slog.Logger) *AuditDigestService {
	return &AuditDigestService{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Summarize counts audit records written at or after since.
func (s *AuditDigestService) Summarize(ctx context.Context, since time.Time) ([]DigestRow, error) {
	rows := []DigestRow{}
	err := s.db.WithContext(ctx).
		Model(&models.AuditRecord{}).
		Select("table_name, operation, COUNT(*) AS count").
		Where(clause.Gte{Column: clause.Column{Name: "time"}, Value: since}).
		Group("table_name").
		Group("operation").
		Order("table_name, operation").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("summarize audit: %w", err)
	}
	return rows, nil
}

func (s *AuditDigestService) LogDailyDigest(ctx context.Context) {
	since := utils.BeginningOfDay(s.now())

	rows, err := s.Summarize(ctx, since)
	if err != nil {
		s.logger.Error("audit digest failed", slog.Any("error", err))
		return
	}

	var total int64
	for _, row := range rows {
		total += row.Count
		s.logger.Info("audit digest",
			slog.String("table", row.Table),
			slog.String("operation", string(row.Operation)),
			slog.Int64("count", row.Count),
		)
	}
	s.logger.Info("audit digest completed", slog.Time("since", since), slog.Int64("total", total))
}

// StartScheduler runs LogDailyDigest on the given cron schedule. An empty
// schedule disables the digest and returns a nil scheduler.
func (s *AuditDigestService) StartScheduler(schedule string) (*cron.Cron, error) {
	if schedule == "" {
		s.logger.Info("audit digest disabled")
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.LogDailyDigest(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule audit digest %q: %w", schedule, err)
	}

	c.Start()
	s.logger.Info("audit digest scheduler started", slog.String("schedule", schedule))
	return c, nil
}
