package repository_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"customerhub-backend/config"
	"customerhub-backend/models"
	"customerhub-backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type failingSink struct{}

func (failingSink) Record(context.Context, *gorm.DB, repository.AuditEntry) error {
	return errors.New("audit table unavailable")
}

type fixture struct {
	db        *gorm.DB
	clock     *stepClock
	customers *repository.Repository[*models.Customer]
	addresses *repository.Repository[*models.Address]
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := config.ConnectDB(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    ":memory:?_pragma=foreign_keys(1)",
	}, logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	clock := &stepClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	auditor := repository.NewAuditor()
	return &fixture{
		db:        db,
		clock:     clock,
		customers: repository.New(db, auditor, models.NewCustomer, repository.WithClock(clock.Now)),
		addresses: repository.New(db, auditor, models.NewAddress, repository.WithClock(clock.Now)),
	}
}

func strPtr(s string) *string { return &s }

func sampleCustomer() *models.Customer {
	return &models.Customer{
		FirstName:  "first name",
		MiddleName: strPtr("middle name"),
		LastName:   "last name",
		Age:        30,
		Married:    true,
		Height:     170.5,
		Weight:     85.8,
	}
}

func (f *fixture) insertCustomer(t *testing.T, mutate func(c *models.Customer)) *models.Customer {
	t.Helper()
	c := sampleCustomer()
	if mutate != nil {
		mutate(c)
	}
	inserted, err := f.customers.Insert(context.Background(), c)
	require.NoError(t, err)
	return inserted
}

func (f *fixture) insertAddress(t *testing.T, customerID uuid.UUID, city string) *models.Address {
	t.Helper()
	inserted, err := f.addresses.Insert(context.Background(), &models.Address{
		CustomerID: customerID,
		Street:     strPtr("street name"),
		City:       city,
		Country:    "country name",
	})
	require.NoError(t, err)
	return inserted
}

func TestInsertThenGetReturnsSameRepresentation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	inserted := f.insertCustomer(t, nil)
	require.NotEqual(t, uuid.Nil, inserted.ID)

	fetched, err := f.customers.Get(ctx, inserted.ID)
	require.NoError(t, err)
	require.Equal(t, inserted.AsJSON(), fetched.AsJSON())

	want := sampleCustomer()
	want.ID = inserted.ID
	require.Equal(t, want.AsJSON(), fetched.AsJSON())
}

func TestInsertAddressStampsTimestamps(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	customer := f.insertCustomer(t, nil)
	address := f.insertAddress(t, customer.ID, "city name")

	require.NotEqual(t, uuid.Nil, address.ID)
	require.Equal(t, customer.ID, address.CustomerID)
	require.False(t, address.CreatedAt.IsZero())
	require.True(t, address.LastUpdated.Equal(address.CreatedAt))
}

func TestInsertAddressRejectsUnknownCustomer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	missing := uuid.New()
	_, err := f.addresses.Insert(ctx, &models.Address{CustomerID: missing, City: "c", Country: "c"})
	require.ErrorIs(t, err, repository.ErrInvalidReference)

	var refErr *repository.ReferenceError
	require.ErrorAs(t, err, &refErr)
	require.Equal(t, "customer_id", refErr.Field)
	require.Equal(t, missing.String(), refErr.ID)

	all, err := f.addresses.GetAll(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	id := uuid.MustParse("47dd46aa-2668-4fe6-a8db-e6a47dd63cde")
	_, err := f.customers.Get(context.Background(), id)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.True(t, repository.IsNotFound(err))
	require.EqualError(t, err, "Customer with id: 47dd46aa-2668-4fe6-a8db-e6a47dd63cde not found")
}

func TestGetAllFilters(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	alice := f.insertCustomer(t, func(c *models.Customer) { c.FirstName = "Alice"; c.Age = 30 })
	bob := f.insertCustomer(t, func(c *models.Customer) {
		c.FirstName = "Bob"
		c.Married = false
		c.MiddleName = nil
	})
	carol := f.insertCustomer(t, func(c *models.Customer) { c.FirstName = "Carol"; c.Age = 45 })

	ids := func(rows []*models.Customer) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.ID)
		}
		return out
	}

	all, err := f.customers.GetAll(ctx, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID, carol.ID}, ids(all))

	empty, err := f.customers.GetAll(ctx, models.Filters{})
	require.NoError(t, err)
	assert.Len(t, empty, 3)

	unmarried, err := f.customers.GetAll(ctx, models.Filters{"married": false})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, ids(unmarried))

	thirty, err := f.customers.GetAll(ctx, models.Filters{"age": 30, "married": true})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice.ID}, ids(thirty))

	noMiddle, err := f.customers.GetAll(ctx, models.Filters{"middle_name": nil})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, ids(noMiddle))

	none, err := f.customers.GetAll(ctx, models.Filters{"first_name": "Nobody"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetAllRejectsUnknownFilter(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.customers.GetAll(context.Background(), models.Filters{"salary": 10})
	var fieldErr *models.FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "salary", fieldErr.Field)

	_, err = f.customers.GetAll(context.Background(), models.Filters{"age": "thirty"})
	require.ErrorAs(t, err, &fieldErr)
}

func TestGetAllAddressesByCustomer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	first := f.insertCustomer(t, nil)
	second := f.insertCustomer(t, nil)
	f.insertAddress(t, first.ID, "Oslo")
	f.insertAddress(t, first.ID, "Bergen")
	f.insertAddress(t, second.ID, "Oslo")

	rows, err := f.addresses.GetAll(ctx, models.Filters{"customer_id": first.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = f.addresses.GetAll(ctx, models.Filters{"customer_id": first.ID, "city": "Oslo"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	withAddresses, err := f.customers.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, withAddresses.Addresses, 2)
}

func TestUpdateAppliesOnlySuppliedFields(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	original := f.insertCustomer(t, nil)

	updated, err := f.customers.Update(ctx, original.ID, models.Patch{"age": 31})
	require.NoError(t, err)
	require.Equal(t, 31, updated.Age)

	want := original.AsJSON()
	want["age"] = 31
	require.Equal(t, want, updated.AsJSON())
}

func TestUpdateEmptyPatchOnlyRefreshesLastUpdated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	customer := f.insertCustomer(t, nil)
	original := f.insertAddress(t, customer.ID, "city name")

	updated, err := f.addresses.Update(ctx, original.ID, models.Patch{})
	require.NoError(t, err)

	require.Equal(t, original.ID, updated.ID)
	require.Equal(t, original.CustomerID, updated.CustomerID)
	require.Equal(t, original.Street, updated.Street)
	require.Equal(t, original.City, updated.City)
	require.Equal(t, original.Country, updated.Country)
	require.True(t, original.CreatedAt.Equal(updated.CreatedAt))
	require.True(t, updated.LastUpdated.After(original.LastUpdated))
	require.False(t, updated.LastUpdated.Before(updated.CreatedAt))
}

func TestUpdateSamePatchTwiceIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	customer := f.insertCustomer(t, nil)
	address := f.insertAddress(t, customer.ID, "city name")

	patch := models.Patch{"city": "X"}
	first, err := f.addresses.Update(ctx, address.ID, patch)
	require.NoError(t, err)
	second, err := f.addresses.Update(ctx, address.ID, patch)
	require.NoError(t, err)

	require.Equal(t, "X", first.City)
	require.Equal(t, first.City, second.City)
	require.Equal(t, first.Street, second.Street)
	require.Equal(t, first.Country, second.Country)
	require.Equal(t, first.CustomerID, second.CustomerID)
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.customers.Update(context.Background(), uuid.New(), models.Patch{"age": 40})
	require.ErrorIs(t, err, repository.ErrNotFound)

	records, err := repository.ListAuditRecords(context.Background(), f.db, repository.AuditFilter{})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestUpdateRejectsReadOnlyField(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	customer := f.insertCustomer(t, nil)
	address := f.insertAddress(t, customer.ID, "city name")

	_, err := f.addresses.Update(ctx, address.ID, models.Patch{"created_at": time.Now()})
	var fieldErr *models.FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "created_at", fieldErr.Field)

	_, err = f.addresses.Update(ctx, address.ID, models.Patch{"customer_id": uuid.New()})
	require.ErrorIs(t, err, repository.ErrInvalidReference)
}

func TestUpdateClearsNullableField(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	customer := f.insertCustomer(t, nil)
	updated, err := f.customers.Update(context.Background(), customer.ID, models.Patch{"middle_name": nil})
	require.NoError(t, err)
	require.Nil(t, updated.MiddleName)
}

func TestDeleteReturnsEntityAndRemovesIt(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	customer := f.insertCustomer(t, nil)

	deleted, err := f.customers.Delete(ctx, customer.ID)
	require.NoError(t, err)
	require.Equal(t, customer.AsJSON(), deleted.AsJSON())

	_, err = f.customers.Get(ctx, customer.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.customers.Delete(ctx, customer.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteCustomerCascadesToAddresses(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	customer := f.insertCustomer(t, nil)
	address := f.insertAddress(t, customer.ID, "city name")

	deleted, err := f.customers.Delete(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, deleted.Addresses, 1)

	_, err = f.addresses.Get(ctx, address.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEveryMutationWritesOneAuditRecord(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	customer := f.insertCustomer(t, nil)
	_, err := f.customers.Update(ctx, customer.ID, models.Patch{"weight": 80.0})
	require.NoError(t, err)
	_, err = f.customers.Get(ctx, customer.ID)
	require.NoError(t, err)
	_, err = f.customers.GetAll(ctx, nil)
	require.NoError(t, err)
	_, err = f.customers.Delete(ctx, customer.ID)
	require.NoError(t, err)

	records, err := repository.ListAuditRecords(ctx, f.db, repository.AuditFilter{ItemID: &customer.ID})
	require.NoError(t, err)
	require.Len(t, records, 3)

	ops := []models.Operation{}
	for _, r := range records {
		require.Equal(t, models.CustomerTable, r.Table)
		require.Equal(t, customer.ID, r.ItemID)
		require.False(t, r.Time.IsZero())
		ops = append(ops, r.Operation)
	}
	require.ElementsMatch(t, []models.Operation{
		models.OperationInsert,
		models.OperationUpdate,
		models.OperationDelete,
	}, ops)

	inserts, err := repository.ListAuditRecords(ctx, f.db, repository.AuditFilter{
		Table:     models.CustomerTable,
		Operation: models.OperationInsert,
	})
	require.NoError(t, err)
	require.Len(t, inserts, 1)
}

func TestAuditFailureRollsBackInsert(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	broken := repository.New(f.db, failingSink{}, models.NewCustomer)
	_, err := broken.Insert(ctx, sampleCustomer())
	require.ErrorIs(t, err, repository.ErrAuditFailed)

	rows, err := f.customers.GetAll(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestAuditFailureRollsBackUpdateAndDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	customer := f.insertCustomer(t, nil)
	broken := repository.New(f.db, failingSink{}, models.NewCustomer)

	_, err := broken.Update(ctx, customer.ID, models.Patch{"age": 55})
	require.ErrorIs(t, err, repository.ErrAuditFailed)

	_, err = broken.Delete(ctx, customer.ID)
	require.ErrorIs(t, err, repository.ErrAuditFailed)

	current, err := f.customers.Get(ctx, customer.ID)
	require.NoError(t, err)
	require.Equal(t, 30, current.Age)

	records, err := repository.ListAuditRecords(ctx, f.db, repository.AuditFilter{ItemID: &customer.ID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, models.OperationInsert, records[0].Operation)
}

func TestAuditorSkipsAuditTable(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	err := repository.NewAuditor().Record(ctx, db, repository.AuditEntry{
		Table:     models.AuditTable,
		ItemID:    uuid.New(),
		Operation: models.OperationInsert,
	})
	require.NoError(t, err)

	records, err := repository.ListAuditRecords(ctx, db, repository.AuditFilter{})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestAuditorRejectsUnknownOperation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	err := repository.NewAuditor().Record(context.Background(), db, repository.AuditEntry{
		Table:     models.CustomerTable,
		ItemID:    uuid.New(),
		Operation: models.Operation("SELECT"),
	})
	require.Error(t, err)
}
