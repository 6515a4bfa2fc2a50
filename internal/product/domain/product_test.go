package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
)

func TestNewProduct_Validation(t *testing.T) {
	cases := []struct {
		name  string
		pname string
		price string
		ok    bool
	}{
		{"valid", "Widget", "12.99", true},
		{"three chars is enough", "Cap", "1", true},
		{"short name", "ab", "12.99", false},
		{"zero price", "Widget", "0", false},
		{"negative price", "Widget", "-1", false},
		{"whole cents", "Widget", "12.50", true},
		{"sub-cent price", "Widget", "0.004", false},
		{"three decimal places", "Widget", "12.995", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewProduct(tc.pname, decimal.RequireFromString(tc.price))
			if tc.ok {
				require.NoError(t, err)
				assert.NotEmpty(t, p.ID)
				assert.False(t, p.Updated)
				assert.Empty(t, p.PriceBrackets)
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindValidation))
		})
	}
}

func TestUpdate_IsIdempotent(t *testing.T) {
	p, err := NewProduct("Widget", decimal.RequireFromString("12.99"))
	require.NoError(t, err)

	require.NoError(t, p.Update("Widget", decimal.RequireFromString("50.00")))
	assert.True(t, p.Updated)
	assert.True(t, p.PreviousPrice.Equal(decimal.RequireFromString("12.99")))
	assert.Equal(t, "Widget", p.Name)

	require.NoError(t, p.Update("Widget", decimal.RequireFromString("50")))
	assert.False(t, p.Updated, "same values must not count as an update")
	assert.True(t, p.PreviousPrice.Equal(decimal.RequireFromString("12.99")))
}

func TestUpdate_RecordsPreviousName(t *testing.T) {
	p, _ := NewProduct("Widget", decimal.NewFromInt(5))
	require.NoError(t, p.Update("Gadget", decimal.NewFromInt(5)))
	assert.True(t, p.Updated)
	assert.Equal(t, "Widget", p.PreviousName)

	err := p.Update("x", decimal.NewFromInt(5))
	assert.Error(t, err)
	assert.Equal(t, "Gadget", p.Name, "failed update leaves state alone")
}

func TestPricingReplacedWholesale(t *testing.T) {
	p, _ := NewProduct("Widget", decimal.NewFromInt(100))
	p.AddPriceBracket(PriceBracket{Quantity: 5, Price: decimal.NewFromInt(95)})
	p.ClearPricing()
	p.AddPriceBracket(PriceBracket{Quantity: 10, Price: decimal.NewFromInt(90)})
	require.Len(t, p.PriceBrackets, 1)
	assert.Equal(t, 10, p.PriceBrackets[0].Quantity)
}

func TestUpdateStockLevel(t *testing.T) {
	p, _ := NewProduct("Widget", decimal.NewFromInt(1))
	require.NoError(t, p.UpdateStockLevel(7))
	assert.Equal(t, 7, p.StockLevel)
	assert.Error(t, p.UpdateStockLevel(-1))
	assert.Equal(t, 7, p.StockLevel)
}

func TestUpdate_NameOnlyKeepsPreviousPriceCurrent(t *testing.T) {
	p, err := NewProduct("Widget", decimal.RequireFromString("12.99"))
	require.NoError(t, err)

	require.NoError(t, p.Update("Gadget", decimal.RequireFromString("12.99")))
	assert.True(t, p.Updated)
	assert.Equal(t, "Widget", p.PreviousName)
	assert.True(t, p.PreviousPrice.Equal(p.Price), "previous price must equal the unchanged price")

	evt := NewProductUpdated(p)
	assert.Equal(t, evt.Previous.Price, evt.New.Price)
}

func TestUpdate_RejectsSubCentPrice(t *testing.T) {
	p, err := NewProduct("Widget", decimal.RequireFromString("12.99"))
	require.NoError(t, err)

	assert.True(t, apperror.Is(p.Update("Widget", decimal.RequireFromString("12.995")), apperror.KindValidation))
	assert.True(t, p.Price.Equal(decimal.RequireFromString("12.99")))
}
