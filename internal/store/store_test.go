package store

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsaban/saband/internal/db"
	"github.com/hsaban/saband/internal/domain"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

func testItem(sku, name string) *domain.InventoryItem {
	return &domain.InventoryItem{
		SKU:            sku,
		ProductName:    name,
		Category:       "דבקים",
		Price:          79.9,
		CoveragePerSqm: "1.44",
		DryingTime:     "24h",
		StockQty:       12,
	}
}
