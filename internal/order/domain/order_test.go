package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
)

func newOrder(t *testing.T) *Order {
	t.Helper()
	o, err := CreateStandard("u-1", []string{"p-1"})
	require.NoError(t, err)
	return o
}

func TestCreate(t *testing.T) {
	o, err := CreateStandard("u-1", []string{})
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, o.Status)
	assert.Equal(t, TypeStandard, o.Type)
	assert.True(t, o.TotalPrice.IsZero())

	p, err := CreatePriority("u-1", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, TypePriority, p.Type)

	_, err = CreateStandard("u-1", nil)
	var argErr *ArgumentError
	assert.ErrorAs(t, err, &argErr)
}

func TestCompleteBeforeConfirm(t *testing.T) {
	o := newOrder(t)

	err := o.Complete()
	var notConfirmed *OrderNotConfirmedError
	require.ErrorAs(t, err, &notConfirmed)
	var invalid *InvalidOrderStateError
	assert.ErrorAs(t, err, &invalid, "not-confirmed refines invalid-state")
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
	assert.Equal(t, StatusCreated, o.Status)
}

func TestHappyPath(t *testing.T) {
	o := newOrder(t)
	require.NoError(t, o.Confirm())
	assert.Equal(t, StatusConfirmed, o.Status)
	require.NoError(t, o.Complete())
	assert.Equal(t, StatusCompleted, o.Status)
	assert.True(t, o.Terminal())
}

func TestConfirm_OnlyFromCreated(t *testing.T) {
	for _, status := range []OrderStatus{StatusConfirmed, StatusCompleted, StatusNoStock} {
		o := newOrder(t)
		o.Status = status
		err := o.Confirm()
		var invalid *InvalidOrderStateError
		assert.True(t, errors.As(err, &invalid), status)
		assert.Equal(t, status, o.Status)
	}
}

func TestMarkStockReservationFailed(t *testing.T) {
	for _, from := range []OrderStatus{StatusCreated, StatusConfirmed, StatusNoStock} {
		o := newOrder(t)
		o.Status = from
		require.NoError(t, o.MarkStockReservationFailed())
		assert.Equal(t, StatusNoStock, o.Status)
	}

	o := newOrder(t)
	o.Status = StatusCompleted
	assert.Error(t, o.MarkStockReservationFailed())
	assert.Equal(t, StatusCompleted, o.Status, "completed orders never regress")
}

func TestSetPrice(t *testing.T) {
	o := newOrder(t)
	require.NoError(t, o.SetPrice(decimal.RequireFromString("19.98")))
	assert.Error(t, o.SetPrice(decimal.NewFromInt(-1)))
	assert.Error(t, o.SetPrice(decimal.RequireFromString("19.985")))
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("19.98")))
}

func TestReconstitute_SkipsValidation(t *testing.T) {
	o := Reconstitute("o-1", "u-1", nil, newOrder(t).OrderDate, TypeStandard, StatusCompleted, decimal.NewFromInt(-5))
	assert.Equal(t, StatusCompleted, o.Status)
	assert.True(t, o.TotalPrice.IsNegative())
}
