package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmehra2102/commerce-choreography/internal/inventory/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
)

const EventOrderCreated = "order.orderCreated.v1"

type orderCreated struct {
	OrderID  string   `json:"orderId"`
	Products []string `json:"products"`
}

type Service struct {
	log       *slog.Logger
	repo      InventoryRepository
	publisher envelope.Publisher
}

func NewService(log *slog.Logger, repo InventoryRepository, publisher envelope.Publisher) *Service {
	return &Service{log: log, repo: repo, publisher: publisher}
}

func (s *Service) GetItem(ctx context.Context, productID string) (domain.InventoryItem, error) {
	return s.repo.Get(ctx, productID)
}

// UpdateStockLevel sets the stock for a product, creating the item when the
// product-added workflow has not run yet.
func (s *Service) UpdateStockLevel(ctx context.Context, productID string, level int) (domain.InventoryItem, error) {
	if productID == "" {
		return domain.InventoryItem{}, apperror.Validation("productId is required")
	}
	item, err := s.repo.Get(ctx, productID)
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		item = domain.NewInventoryItem(productID)
	case err != nil:
		return domain.InventoryItem{}, err
	}

	previous := item.StockLevel
	if err := item.SetStockLevel(level); err != nil {
		return domain.InventoryItem{}, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return domain.InventoryItem{}, err
	}
	evt := domain.StockUpdated{ProductID: productID, PreviousStockLevel: previous, NewStockLevel: level}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		return item, err
	}
	s.log.Info("stock level updated", "product_id", productID, "previous", previous, "new", level)
	return item, nil
}

// OnOrderCreated reserves stock for an order. A redelivered order publishes
// the outcome recorded the first time.
func (s *Service) OnOrderCreated(ctx context.Context, env envelope.Envelope) error {
	var evt orderCreated
	if err := env.Decode(&evt); err != nil {
		return apperror.Deserialization(err)
	}
	if evt.OrderID == "" {
		return apperror.Validation("orderId is required")
	}
	if evt.Products == nil {
		evt.Products = []string{}
	}

	res, fresh, err := s.repo.Reserve(ctx, evt.OrderID, evt.Products)
	if err != nil {
		return err
	}
	if !fresh {
		s.log.Info("order already handled, republishing outcome", "order_id", evt.OrderID, "reserved", res.Reserved)
	}
	if err := s.publisher.Publish(ctx, res.Outcome()); err != nil {
		return err
	}
	s.log.Info("stock reservation processed", "order_id", evt.OrderID, "reserved", res.Reserved)
	return nil
}
