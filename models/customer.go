package models

import (
	"github.com/google/uuid"
)

const CustomerTable = "customer"

type Customer struct {
	BaseModel

	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	FirstName  string    `gorm:"type:varchar(50);not null"`
	MiddleName *string   `gorm:"type:varchar(50)"`
	LastName   string    `gorm:"type:varchar(50);not null"`
	Age        int       `gorm:"not null;check:age > 0 AND age < 100"`
	Married    bool      `gorm:"not null"`
	Height     float64   `gorm:"not null"`
	Weight     float64   `gorm:"not null"`

	Addresses []Address `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

var customerSchema = &Schema{
	Table:  CustomerTable,
	Entity: "Customer",
	Fields: []Field{
		{Name: "id", Kind: KindUUID, Required: true},
		{Name: "first_name", Kind: KindString, Required: true, Filterable: true, Writable: true},
		{Name: "middle_name", Kind: KindString, Nullable: true, Filterable: true, Writable: true},
		{Name: "last_name", Kind: KindString, Required: true, Filterable: true, Writable: true},
		{Name: "age", Kind: KindInt, Required: true, Filterable: true, Writable: true},
		{Name: "married", Kind: KindBool, Required: true, Filterable: true, Writable: true},
		{Name: "height", Kind: KindFloat, Required: true, Filterable: true, Writable: true},
		{Name: "weight", Kind: KindFloat, Required: true, Filterable: true, Writable: true},
	},
	Preload: []string{"Addresses"},
}

func NewCustomer() *Customer { return &Customer{} }

func (Customer) TableName() string { return CustomerTable }

func (*Customer) Schema() *Schema { return customerSchema }

func (c *Customer) GetID() uuid.UUID { return c.ID }

func (c *Customer) SetID(id uuid.UUID) { c.ID = id }

func (c *Customer) AsJSON() map[string]any {
	addresses := make([]map[string]any, 0, len(c.Addresses))
	for i := range c.Addresses {
		addresses = append(addresses, c.Addresses[i].AsJSON())
	}

	var middleName any
	if c.MiddleName != nil {
		middleName = *c.MiddleName
	}

	return map[string]any{
		"id":          c.ID,
		"first_name":  c.FirstName,
		"middle_name": middleName,
		"last_name":   c.LastName,
		"age":         c.Age,
		"married":     c.Married,
		"height":      c.Height,
		"weight":      c.Weight,
		"addresses":   addresses,
	}
}
