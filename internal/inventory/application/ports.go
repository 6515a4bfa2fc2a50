package application

import (
	"context"

	"github.com/dmehra2102/commerce-choreography/internal/inventory/domain"
)

type InventoryRepository interface {
	// InitializeItem writes {productID, 0} unconditionally in one keyed
	// write, without reading first.
	InitializeItem(ctx context.Context, productID string) error
	// Get returns *domain.NotFoundError for unknown products.
	Get(ctx context.Context, productID string) (domain.InventoryItem, error)
	Save(ctx context.Context, item domain.InventoryItem) error
	// Reserve records the outcome for orderID and applies the stock
	// changes atomically. When orderID was already reserved the stored
	// outcome is returned with fresh=false and nothing changes.
	Reserve(ctx context.Context, orderID string, products []string) (res domain.Reservation, fresh bool, err error)
}
