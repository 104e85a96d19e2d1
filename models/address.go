package models

import (
	"time"

	"github.com/google/uuid"
)

const AddressTable = "address"

type Address struct {
	BaseModel

	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	CustomerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Street      *string   `gorm:"type:varchar(50)"`
	City        string    `gorm:"type:varchar(50);not null"`
	Country     string    `gorm:"type:varchar(50);not null"`
	LastUpdated time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

var addressSchema = &Schema{
	Table:  AddressTable,
	Entity: "Address",
	Fields: []Field{
		{Name: "id", Kind: KindUUID, Required: true},
		{Name: "customer_id", Kind: KindUUID, Required: true, Filterable: true, Writable: true},
		{Name: "street", Kind: KindString, Nullable: true, Filterable: true, Writable: true},
		{Name: "city", Kind: KindString, Required: true, Filterable: true, Writable: true},
		{Name: "country", Kind: KindString, Required: true, Filterable: true, Writable: true},
		{Name: "last_updated", Kind: KindTime, Required: true},
		{Name: "created_at", Kind: KindTime, Required: true},
	},
	Timestamps: true,
	References: []Reference{
		{Field: "customer_id", Table: CustomerTable, Entity: "Customer"},
	},
}

func NewAddress() *Address { return &Address{} }

func (Address) TableName() string { return AddressTable }

func (*Address) Schema() *Schema { return addressSchema }

func (a *Address) GetID() uuid.UUID { return a.ID }

func (a *Address) SetID(id uuid.UUID) { a.ID = id }

func (a *Address) StampCreated(now time.Time) {
	a.CreatedAt = now
	a.LastUpdated = now
}

func (a *Address) AsJSON() map[string]any {
	var street any
	if a.Street != nil {
		street = *a.Street
	}

	return map[string]any{
		"id":           a.ID,
		"customer_id":  a.CustomerID,
		"street":       street,
		"city":         a.City,
		"country":      a.Country,
		"last_updated": a.LastUpdated,
		"created_at":   a.CreatedAt,
	}
}
