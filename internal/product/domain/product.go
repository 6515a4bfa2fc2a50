package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const minNameLength = 3

type PriceBracket struct {
	Quantity int
	Price    decimal.Decimal
}

type Product struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	PreviousName  string
	PreviousPrice decimal.Decimal
	StockLevel    int
	PriceBrackets []PriceBracket
	// Updated reports whether the last Update changed anything.
	Updated bool
}

func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	if err := validate("", name, price); err != nil {
		return nil, err
	}
	return &Product{
		ID:            uuid.New().String(),
		Name:          name,
		Price:         price,
		PriceBrackets: []PriceBracket{},
	}, nil
}

// Reconstitute rebuilds a product from storage without validation.
func Reconstitute(id, name string, price decimal.Decimal, previousName string, previousPrice decimal.Decimal, stockLevel int, brackets []PriceBracket) *Product {
	if brackets == nil {
		brackets = []PriceBracket{}
	}
	return &Product{
		ID:            id,
		Name:          name,
		Price:         price,
		PreviousName:  previousName,
		PreviousPrice: previousPrice,
		StockLevel:    stockLevel,
		PriceBrackets: brackets,
	}
}

// Update applies new details. Applying the same values twice leaves Updated
// false on the second call.
func (p *Product) Update(name string, price decimal.Decimal) error {
	if err := validate(p.ID, name, price); err != nil {
		return err
	}
	p.Updated = p.Name != name || !p.Price.Equal(price)
	if !p.Updated {
		return nil
	}
	p.PreviousName, p.PreviousPrice = p.Name, p.Price
	p.Name, p.Price = name, price
	return nil
}

func (p *Product) ClearPricing() {
	p.PriceBrackets = []PriceBracket{}
}

func (p *Product) AddPriceBracket(b PriceBracket) {
	p.PriceBrackets = append(p.PriceBrackets, b)
}

func (p *Product) UpdateStockLevel(level int) error {
	if level < 0 {
		return &ValidationError{ProductID: p.ID, Reason: "stock level cannot be negative"}
	}
	p.StockLevel = level
	return nil
}

func validate(id, name string, price decimal.Decimal) error {
	if len(name) < minNameLength {
		return &ValidationError{ProductID: id, Reason: "name must be at least 3 characters"}
	}
	if !price.IsPositive() {
		return &ValidationError{ProductID: id, Reason: "price must be greater than zero"}
	}
	if !price.Equal(price.Truncate(2)) {
		return &ValidationError{ProductID: id, Reason: "price must have at most 2 decimal places"}
	}
	return nil
}
