package controllers

import (
	"log/slog"
	"net/http"

	"customerhub-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const customerEntity = "Customer"

// CustomerQuery holds the optional equality filters of GET /customers.
type CustomerQuery struct {
	FirstName  *string  `form:"first_name"`
	MiddleName *string  `form:"middle_name"`
	LastName   *string  `form:"last_name"`
	Age        *int     `form:"age" binding:"omitnil,gt=0,lt=100"`
	Married    *bool    `form:"married"`
	Height     *float64 `form:"height"`
	Weight     *float64 `form:"weight"`
}

// Filters returns only the filters the caller actually set.
func (q CustomerQuery) Filters() models.Filters {
	f := models.Filters{}
	if q.FirstName != nil {
		f["first_name"] = *q.FirstName
	}
	if q.MiddleName != nil {
		f["middle_name"] = *q.MiddleName
	}
	if q.LastName != nil {
		f["last_name"] = *q.LastName
	}
	if q.Age != nil {
		f["age"] = *q.Age
	}
	if q.Married != nil {
		f["married"] = *q.Married
	}
	if q.Height != nil {
		f["height"] = *q.Height
	}
	if q.Weight != nil {
		f["weight"] = *q.Weight
	}
	return f
}

// CreateCustomerInput defines the expected JSON structure for creating a customer.
// Numbers and booleans are pointers so that 0 and false still count as provided.
type CreateCustomerInput struct {
	FirstName  string   `json:"first_name" binding:"required"`
	MiddleName *string  `json:"middle_name"`
	LastName   string   `json:"last_name" binding:"required"`
	Age        *int     `json:"age" binding:"required,gt=0,lt=100"`
	Married    *bool    `json:"married" binding:"required"`
	Height     *float64 `json:"height" binding:"required"`
	Weight     *float64 `json:"weight" binding:"required"`
}

func (in CreateCustomerInput) Customer() *models.Customer {
	return &models.Customer{
		FirstName:  in.FirstName,
		MiddleName: in.MiddleName,
		LastName:   in.LastName,
		Age:        *in.Age,
		Married:    *in.Married,
		Height:     *in.Height,
		Weight:     *in.Weight,
	}
}

// UpdateCustomerInput defines the expected JSON structure for patching a customer
type UpdateCustomerInput struct {
	FirstName  *string  `json:"first_name" binding:"omitnil,min=1"`
	MiddleName *string  `json:"middle_name"`
	LastName   *string  `json:"last_name" binding:"omitnil,min=1"`
	Age        *int     `json:"age" binding:"omitnil,gt=0,lt=100"`
	Married    *bool    `json:"married"`
	Height     *float64 `json:"height"`
	Weight     *float64 `json:"weight"`
}

// Patch forwards every field the body carried. A null middle_name clears it.
func (in UpdateCustomerInput) Patch(body patchBody) models.Patch {
	p := models.Patch{}
	if in.FirstName != nil {
		p["first_name"] = *in.FirstName
	}
	if in.MiddleName != nil {
		p["middle_name"] = *in.MiddleName
	} else if body.isNull("middle_name") {
		p["middle_name"] = nil
	}
	if in.LastName != nil {
		p["last_name"] = *in.LastName
	}
	if in.Age != nil {
		p["age"] = *in.Age
	}
	if in.Married != nil {
		p["married"] = *in.Married
	}
	if in.Height != nil {
		p["height"] = *in.Height
	}
	if in.Weight != nil {
		p["weight"] = *in.Weight
	}
	return p
}

// CustomerOut is the response shape of every customer endpoint.
type CustomerOut struct {
	ID         uuid.UUID    `json:"id" validate:"required"`
	FirstName  string       `json:"first_name" validate:"required"`
	MiddleName *string      `json:"middle_name"`
	LastName   string       `json:"last_name" validate:"required"`
	Age        int          `json:"age" validate:"gt=0,lt=100"`
	Married    bool         `json:"married"`
	Height     float64      `json:"height"`
	Weight     float64      `json:"weight"`
	Addresses  []AddressOut `json:"addresses" validate:"dive"`
}

type CustomerController struct {
	Store  Store[*models.Customer]
	Logger *slog.Logger
}

func NewCustomerController(store Store[*models.Customer], logger *slog.Logger) *CustomerController {
	return &CustomerController{Store: store, Logger: logger}
}

// GetCustomers lists customers matching the query filters
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	var query CustomerQuery
	if !bindQuery(c, &query) {
		return
	}

	customers, err := cc.Store.GetAll(c.Request.Context(), query.Filters())
	if err != nil {
		respondError(c, cc.Logger, customerEntity, "", err)
		return
	}

	respondList[CustomerOut](c, cc.Logger, customerEntity, customers)
}

func (cc *CustomerController) GetCustomer(c *gin.Context) {
	id, ok := parseID(c, customerEntity)
	if !ok {
		return
	}

	customer, err := cc.Store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, cc.Logger, customerEntity, c.Param("id"), err)
		return
	}

	respond[CustomerOut](c, cc.Logger, http.StatusOK, customerEntity, customer)
}

func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var input CreateCustomerInput
	if !bindJSON(c, &input) {
		return
	}

	customer, err := cc.Store.Insert(c.Request.Context(), input.Customer())
	if err != nil {
		respondError(c, cc.Logger, customerEntity, "", err)
		return
	}

	respond[CustomerOut](c, cc.Logger, http.StatusCreated, customerEntity, customer)
}

// UpdateCustomer applies a partial patch; fields left out of the body are untouched
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c, customerEntity)
	if !ok {
		return
	}

	var input UpdateCustomerInput
	body, ok := bindPatch(c, &input, models.NewCustomer().Schema())
	if !ok {
		return
	}

	customer, err := cc.Store.Update(c.Request.Context(), id, input.Patch(body))
	if err != nil {
		respondError(c, cc.Logger, customerEntity, c.Param("id"), err)
		return
	}

	respond[CustomerOut](c, cc.Logger, http.StatusOK, customerEntity, customer)
}

// DeleteCustomer removes the customer and its addresses and returns the removed customer
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c, customerEntity)
	if !ok {
		return
	}

	customer, err := cc.Store.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, cc.Logger, customerEntity, c.Param("id"), err)
		return
	}

	respond[CustomerOut](c, cc.Logger, http.StatusOK, customerEntity, customer)
}
