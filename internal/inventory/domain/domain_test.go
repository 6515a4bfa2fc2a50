package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
)

func TestSetStockLevel(t *testing.T) {
	item := NewInventoryItem("p-1")
	assert.Equal(t, 0, item.StockLevel)
	assert.NoError(t, item.SetStockLevel(3))
	err := item.SetStockLevel(-1)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, 3, item.StockLevel)
}

func TestReserve(t *testing.T) {
	stock := map[string]int{"a": 2, "b": 1, "c": 0}

	res, updated := Reserve("o-1", []string{"a", "b"}, stock)
	assert.True(t, res.Reserved)
	assert.Equal(t, map[string]int{"a": 1, "b": 0}, updated)
	assert.Equal(t, StockReserved{OrderID: "o-1"}, res.Outcome())

	res, updated = Reserve("o-2", []string{"a", "c"}, stock)
	assert.False(t, res.Reserved)
	assert.Equal(t, "c", res.FailedProductID)
	assert.Nil(t, updated)
	assert.Equal(t, StockReservationFailed{OrderID: "o-2", ProductID: "c"}, res.Outcome())

	res, _ = Reserve("o-3", []string{"b", "b"}, stock)
	assert.False(t, res.Reserved, "two units of b are needed")

	res, _ = Reserve("o-4", []string{"unknown"}, stock)
	assert.False(t, res.Reserved)

	res, updated = Reserve("o-5", []string{}, stock)
	assert.True(t, res.Reserved)
	assert.Empty(t, updated)
}
