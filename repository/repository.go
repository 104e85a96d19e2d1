package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"customerhub-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides get/get-all/insert/update/delete for one entity type.
// Every write runs in a single transaction together with its audit record.
type Repository[T models.Entity] struct {
	db     *gorm.DB
	audit  AuditSink
	newT   func() T
	schema *models.Schema
	now    func() time.Time
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the source of created_at/last_updated values.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New[T models.Entity](db *gorm.DB, audit AuditSink, newT func() T, opts ...Option) *Repository[T] {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return &Repository[T]{
		db:     db,
		audit:  audit,
		newT:   newT,
		schema: newT().Schema(),
		now:    o.now,
	}
}

func (r *Repository[T]) Schema() *models.Schema {
	return r.schema
}

func (r *Repository[T]) GetAll(ctx context.Context, filters models.Filters) ([]T, error) {
	if err := r.schema.CheckFilters(filters); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.schema.Table, err)
	}

	query := r.preload(r.db.WithContext(ctx))
	if len(filters) > 0 {
		query = query.Where(map[string]any(filters))
	}

	rows := []T{}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.schema.Table, err)
	}
	return rows, nil
}

func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *Repository[T]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T
	id := uuid.New()
	entity.SetID(id)
	if ts, ok := any(entity).(models.Timestamped); ok && r.schema.Timestamps {
		ts.StampCreated(r.now())
	}

	var inserted T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.checkReferences(tx, entity.AsJSON()); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(entity).Error; err != nil {
			return fmt.Errorf("insert %s: %w", r.schema.Table, err)
		}
		if err := r.record(ctx, tx, id, models.OperationInsert); err != nil {
			return err
		}

		var err error
		inserted, err = r.get(tx, id)
		return err
	})
	if err != nil {
		return zero, err
	}
	return inserted, nil
}

func (r *Repository[T]) Update(ctx context.Context, id uuid.UUID, patch models.Patch) (T, error) {
	var zero T
	if err := r.schema.CheckPatch(patch); err != nil {
		return zero, fmt.Errorf("update %s: %w", r.schema.Table, err)
	}

	updates := make(map[string]any, len(patch)+1)
	for name, value := range patch {
		updates[name] = value
	}
	if r.schema.Timestamps {
		updates["last_updated"] = r.now()
	}

	var updated T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.get(tx, id); err != nil {
			return err
		}
		if err := r.checkReferences(tx, updates); err != nil {
			return err
		}
		if len(updates) > 0 {
			res := tx.Model(r.newT()).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return fmt.Errorf("update %s: %w", r.schema.Table, res.Error)
			}
		}
		if err := r.record(ctx, tx, id, models.OperationUpdate); err != nil {
			return err
		}

		var err error
		updated, err = r.get(tx, id)
		return err
	})
	if err != nil {
		return zero, err
	}
	return updated, nil
}

func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	var deleted T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := r.get(tx, id)
		if err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(r.newT())
		if res.Error != nil {
			return fmt.Errorf("delete %s: %w", r.schema.Table, res.Error)
		}
		if res.RowsAffected == 0 {
			return r.notFound(id)
		}
		if err := r.record(ctx, tx, id, models.OperationDelete); err != nil {
			return err
		}

		deleted = current
		return nil
	})
	if err != nil {
		return zero, err
	}
	return deleted, nil
}

func (r *Repository[T]) get(db *gorm.DB, id uuid.UUID) (T, error) {
	var zero T
	rows := []T{}
	if err := r.preload(db).Where("id = ?", id).Limit(2).Find(&rows).Error; err != nil {
		return zero, fmt.Errorf("get %s: %w", r.schema.Table, err)
	}

	switch len(rows) {
	case 0:
		return zero, r.notFound(id)
	case 1:
		return rows[0], nil
	default:
		return zero, fmt.Errorf("get %s %s: %w", r.schema.Table, id, ErrAmbiguous)
	}
}

func (r *Repository[T]) preload(db *gorm.DB) *gorm.DB {
	for _, assoc := range r.schema.Preload {
		db = db.Preload(assoc)
	}
	return db
}

func (r *Repository[T]) notFound(id uuid.UUID) error {
	return &NotFoundError{Entity: r.schema.Entity, ID: id.String()}
}

// checkReferences verifies that every reference field present in values
// points at an existing row.
func (r *Repository[T]) checkReferences(tx *gorm.DB, values map[string]any) error {
	for _, ref := range r.schema.References {
		value, ok := values[ref.Field]
		if !ok {
			continue
		}
		refID, ok := value.(uuid.UUID)
		if !ok {
			return fmt.Errorf("check %s.%s: expected uuid, got %T", r.schema.Table, ref.Field, value)
		}

		var count int64
		if err := tx.Table(ref.Table).Where("id = ?", refID).Count(&count).Error; err != nil {
			return fmt.Errorf("check %s.%s: %w", r.schema.Table, ref.Field, err)
		}
		if count == 0 {
			return &ReferenceError{Field: ref.Field, Entity: ref.Entity, ID: refID.String()}
		}
	}
	return nil
}

func (r *Repository[T]) record(ctx context.Context, tx *gorm.DB, id uuid.UUID, op models.Operation) error {
	err := r.audit.Record(ctx, tx, AuditEntry{
		Table:     r.schema.Table,
		ItemID:    id,
		Operation: op,
	})
	if err != nil {
		return fmt.Errorf("%s %s %s: %w: %w", op, r.schema.Table, id, ErrAuditFailed, err)
	}
	return nil
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
