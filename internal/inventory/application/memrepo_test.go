package application

import (
	"context"
	"sync"

	"github.com/dmehra2102/commerce-choreography/internal/inventory/domain"
)

// memRepo is an InventoryRepository backed by maps.
type memRepo struct {
	mu           sync.Mutex
	items        map[string]domain.InventoryItem
	reservations map[string]domain.Reservation
}

func newMemRepo() *memRepo {
	return &memRepo{
		items:        map[string]domain.InventoryItem{},
		reservations: map[string]domain.Reservation{},
	}
}

func (r *memRepo) InitializeItem(_ context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[productID] = domain.NewInventoryItem(productID)
	return nil
}

func (r *memRepo) Get(_ context.Context, productID string) (domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[productID]
	if !ok {
		return domain.InventoryItem{}, &domain.NotFoundError{ProductID: productID}
	}
	return item, nil
}

func (r *memRepo) Save(_ context.Context, item domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ProductID] = item
	return nil
}

func (r *memRepo) Reserve(_ context.Context, orderID string, products []string) (domain.Reservation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.reservations[orderID]; ok {
		return res, false, nil
	}
	stock := make(map[string]int, len(products))
	for _, p := range products {
		if item, ok := r.items[p]; ok {
			stock[p] = item.StockLevel
		}
	}
	res, updated := domain.Reserve(orderID, products, stock)
	for p, level := range updated {
		r.items[p] = domain.InventoryItem{ProductID: p, StockLevel: level}
	}
	r.reservations[orderID] = res
	return res, true, nil
}

// Len reports how many items exist.
func (r *memRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
