package exporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/openmercado/shopapi/internal/domain"
)

func TestWriteProducts(t *testing.T) {
	catID := uint(3)
	products := []domain.Product{
		{
			ID:          1,
			Name:        "Keyboard",
			Description: "Mechanical, tenkeyless",
			Price:       decimal.RequireFromString("129.9"),
			CategoryID:  &catID,
			CreatedAt:   time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		},
		{
			ID:    2,
			Name:  "Mouse",
			Price: decimal.RequireFromString("59.90"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProducts(&buf, products))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Name", rows[0][1])
	assert.Equal(t, "Keyboard", rows[1][1])
	assert.Equal(t, "129.90", rows[1][3])
	assert.Equal(t, "3", rows[1][5])
	assert.Equal(t, "Mouse", rows[2][1])
	assert.Equal(t, "59.90", rows[2][3])
}

func TestWriteProductsEmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProducts(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ID", rows[0][0])
}
