package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsaban/saband/internal/domain"
)

func TestProductStoreCRUD(t *testing.T) {
	products := NewProductStore(openTestDB(t))
	ctx := context.Background()

	created, err := products.Create(ctx, &domain.Product{
		SKU:         "TM-770",
		ProductName: "טיח מיישר 770",
		Category:    "טיח",
		Price:       45.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "TM-770", created.SKU)
	assert.False(t, created.CreatedAt.IsZero())

	created.Price = 48
	created.Description = "שק 25 ק\"ג"
	require.NoError(t, products.Update(ctx, created))

	got, err := products.GetBySKU(ctx, "TM-770")
	require.NoError(t, err)
	assert.InDelta(t, 48, got.Price, 0.0001)
	assert.Equal(t, "שק 25 ק\"ג", got.Description)

	found, err := products.Search(ctx, "מיישר")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "TM-770", found[0].SKU)

	require.NoError(t, products.Delete(ctx, "TM-770"))
	_, err = products.GetBySKU(ctx, "TM-770")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductStoreUpdateMissing(t *testing.T) {
	products := NewProductStore(openTestDB(t))

	err := products.Update(context.Background(), &domain.Product{SKU: "NOPE"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDriverStore(t *testing.T) {
	drivers := NewDriverStore(openTestDB(t))
	ctx := context.Background()

	created, err := drivers.Create(ctx, "משה לוי", "050-1234567", domain.DriverActive, "משאית מנוף", "אשדוד")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.DriverActive, created.Status)

	require.NoError(t, drivers.UpdateStatus(ctx, created.ID, domain.DriverBusy, "נתיבות"))

	got, err := drivers.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DriverBusy, got.Status)
	assert.Equal(t, "נתיבות", got.Location)

	list, err := drivers.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, drivers.UpdateStatus(ctx, "missing", domain.DriverAway, ""), ErrNotFound)
}

func TestBusinessStoreCRUD(t *testing.T) {
	business := NewBusinessStore(openTestDB(t))
	ctx := context.Background()

	created, err := business.Create(ctx, &domain.BusinessInfo{
		Category: "משלוחים",
		Question: "מתי מגיעים משלוחים לאשדוד?",
		Answer:   "בימים א-ה עד השעה 17:00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	created.Answer = "בימים א-ו"
	require.NoError(t, business.Update(ctx, created))

	got, err := business.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "בימים א-ו", got.Answer)

	forPrompt, err := business.ListForPrompt(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, forPrompt, 1)

	require.NoError(t, business.Delete(ctx, created.ID))
	assert.ErrorIs(t, business.Delete(ctx, created.ID), ErrNotFound)
}

func TestHistoryStoreAppendAndList(t *testing.T) {
	history := NewHistoryStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, history.Append(ctx, "כמה עולה דבק?", `{"text":"79.9"}`))
	require.NoError(t, history.Append(ctx, "80 מטר", `{"text":"56 קרטונים"}`))

	entries, err := history.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.NotEmpty(t, e.Query)
	}
}
