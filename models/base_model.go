package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAsJSONNotImplemented = errors.New("as_json is not implemented for the base model")

// Entity is the contract every persisted type fulfils so the repository
// can handle it without knowing its fields.
type Entity interface {
	TableName() string
	Schema() *Schema
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	// AsJSON returns the canonical representation of the row.
	AsJSON() map[string]any
}

// Timestamped entities carry created_at and last_updated columns.
type Timestamped interface {
	StampCreated(now time.Time)
}

// BaseModel is embedded by every entity. Its AsJSON exists only so that a
// concrete type that forgets to define its own representation fails
// loudly instead of producing an empty body.
type BaseModel struct{}

func (BaseModel) AsJSON() map[string]any {
	panic(ErrAsJSONNotImplemented)
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Customer{},
		&Address{},
		&AuditRecord{},
	)
}
