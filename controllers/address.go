package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"customerhub-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const addressEntity = "Address"

type AddressQuery struct {
	CustomerID *string `form:"customer_id" binding:"omitnil,uuid"`
	Street     *string `form:"street"`
	City       *string `form:"city"`
	Country    *string `form:"country"`
}

// Filters returns only the filters the caller actually set. customer_id is
// already checked by the uuid rule when the query is bound.
func (q AddressQuery) Filters() (models.Filters, error) {
	f := models.Filters{}
	if q.CustomerID != nil {
		id, err := uuid.Parse(*q.CustomerID)
		if err != nil {
			return nil, err
		}
		f["customer_id"] = id
	}
	if q.Street != nil {
		f["street"] = *q.Street
	}
	if q.City != nil {
		f["city"] = *q.City
	}
	if q.Country != nil {
		f["country"] = *q.Country
	}
	return f, nil
}

// CreateAddressInput defines the expected JSON structure for creating an address
type CreateAddressInput struct {
	CustomerID string  `json:"customer_id" binding:"required,uuid"`
	Street     *string `json:"street"`
	City       string  `json:"city" binding:"required"`
	Country    string  `json:"country" binding:"required"`
}

func (in CreateAddressInput) Address() (*models.Address, error) {
	customerID, err := uuid.Parse(in.CustomerID)
	if err != nil {
		return nil, err
	}

	return &models.Address{
		CustomerID: customerID,
		Street:     in.Street,
		City:       in.City,
		Country:    in.Country,
	}, nil
}

type UpdateAddressInput struct {
	CustomerID *string `json:"customer_id" binding:"omitnil,uuid"`
	Street     *string `json:"street"`
	City       *string `json:"city" binding:"omitnil,min=1"`
	Country    *string `json:"country" binding:"omitnil,min=1"`
}

// Patch forwards every field the body carried. A null street clears it.
func (in UpdateAddressInput) Patch(body patchBody) (models.Patch, error) {
	p := models.Patch{}
	if in.CustomerID != nil {
		customerID, err := uuid.Parse(*in.CustomerID)
		if err != nil {
			return nil, err
		}
		p["customer_id"] = customerID
	}
	if in.Street != nil {
		p["street"] = *in.Street
	} else if body.isNull("street") {
		p["street"] = nil
	}
	if in.City != nil {
		p["city"] = *in.City
	}
	if in.Country != nil {
		p["country"] = *in.Country
	}
	return p, nil
}

// AddressOut is the response shape of every address endpoint and of the
// addresses embedded in CustomerOut.
type AddressOut struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	CustomerID  uuid.UUID `json:"customer_id" validate:"required"`
	Street      *string   `json:"street"`
	City        string    `json:"city" validate:"required"`
	Country     string    `json:"country" validate:"required"`
	LastUpdated time.Time `json:"last_updated" validate:"required,gtefield=CreatedAt"`
	CreatedAt   time.Time `json:"created_at" validate:"required"`
}

type AddressController struct {
	Store  Store[*models.Address]
	Logger *slog.Logger
}

func NewAddressController(store Store[*models.Address], logger *slog.Logger) *AddressController {
	return &AddressController{Store: store, Logger: logger}
}

func (ac *AddressController) GetAddresses(c *gin.Context) {
	var query AddressQuery
	if !bindQuery(c, &query) {
		return
	}

	filters, err := query.Filters()
	if err != nil {
		respondError(c, ac.Logger, addressEntity, "", err)
		return
	}

	addresses, err := ac.Store.GetAll(c.Request.Context(), filters)
	if err != nil {
		respondError(c, ac.Logger, addressEntity, "", err)
		return
	}

	respondList[AddressOut](c, ac.Logger, addressEntity, addresses)
}

func (ac *AddressController) GetAddress(c *gin.Context) {
	id, ok := parseID(c, addressEntity)
	if !ok {
		return
	}

	address, err := ac.Store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, ac.Logger, addressEntity, c.Param("id"), err)
		return
	}

	respond[AddressOut](c, ac.Logger, http.StatusOK, addressEntity, address)
}

// CreateAddress attaches a new address to an existing customer
func (ac *AddressController) CreateAddress(c *gin.Context) {
	var input CreateAddressInput
	if !bindJSON(c, &input) {
		return
	}

	address, err := input.Address()
	if err != nil {
		respondError(c, ac.Logger, addressEntity, "", err)
		return
	}

	address, err = ac.Store.Insert(c.Request.Context(), address)
	if err != nil {
		respondError(c, ac.Logger, addressEntity, "", err)
		return
	}

	respond[AddressOut](c, ac.Logger, http.StatusCreated, addressEntity, address)
}

func (ac *AddressController) UpdateAddress(c *gin.Context) {
	id, ok := parseID(c, addressEntity)
	if !ok {
		return
	}

	var input UpdateAddressInput
	body, ok := bindPatch(c, &input, models.NewAddress().Schema())
	if !ok {
		return
	}

	patch, err := input.Patch(body)
	if err != nil {
		respondError(c, ac.Logger, addressEntity, "", err)
		return
	}

	address, err := ac.Store.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, ac.Logger, addressEntity, c.Param("id"), err)
		return
	}

	respond[AddressOut](c, ac.Logger, http.StatusOK, addressEntity, address)
}

func (ac *AddressController) DeleteAddress(c *gin.Context) {
	id, ok := parseID(c, addressEntity)
	if !ok {
		return
	}

	address, err := ac.Store.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, ac.Logger, addressEntity, c.Param("id"), err)
		return
	}

	respond[AddressOut](c, ac.Logger, http.StatusOK, addressEntity, address)
}
