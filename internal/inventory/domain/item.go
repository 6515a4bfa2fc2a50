package domain

import (
	"fmt"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
)

type InventoryItem struct {
	ProductID  string
	StockLevel int
}

// NewInventoryItem is the state the product-added workflow writes: known to
// inventory, nothing in stock.
func NewInventoryItem(productID string) InventoryItem {
	return InventoryItem{ProductID: productID}
}

func (i *InventoryItem) SetStockLevel(level int) error {
	if level < 0 {
		return &ValidationError{Reason: fmt.Sprintf("stock level for %s cannot be negative", i.ProductID)}
	}
	i.StockLevel = level
	return nil
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string            { return e.Reason }
func (e *ValidationError) ErrorKind() apperror.Kind { return apperror.KindValidation }

type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no inventory for product %s", e.ProductID)
}
func (e *NotFoundError) ErrorKind() apperror.Kind { return apperror.KindNotFound }
