package application

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/commerce-choreography/internal/pricing/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
)

type Service struct {
	log       *slog.Logger
	publisher envelope.Publisher
}

func NewService(log *slog.Logger, publisher envelope.Publisher) *Service {
	return &Service{log: log, publisher: publisher}
}

func (s *Service) OnProductCreated(ctx context.Context, env envelope.Envelope) error {
	var evt productCreated
	if err := env.Decode(&evt); err != nil {
		return apperror.Deserialization(err)
	}
	if evt.ProductID == "" {
		return apperror.Validation("productId is required")
	}
	return s.publish(ctx, evt.ProductID, evt.Price)
}

// OnProductUpdated only recalculates when the price moved; a rename alone
// must not look like a price change downstream.
func (s *Service) OnProductUpdated(ctx context.Context, env envelope.Envelope) error {
	var evt productUpdated
	if err := env.Decode(&evt); err != nil {
		return apperror.Deserialization(err)
	}
	if evt.ProductID == "" {
		return apperror.Validation("productId is required")
	}
	if decimal.NewFromFloat(evt.Previous.Price).Equal(decimal.NewFromFloat(evt.New.Price)) {
		s.log.Info("price unchanged, skipping pricing", "product_id", evt.ProductID)
		return nil
	}
	return s.publish(ctx, evt.ProductID, evt.New.Price)
}

func (s *Service) publish(ctx context.Context, productID string, price float64) error {
	base := decimal.NewFromFloat(price)
	if !base.IsPositive() {
		return apperror.Validation("price must be greater than zero")
	}

	brackets := domain.Calculate(base)
	out := PricingCalculated{ProductID: productID, PriceBrackets: make([]BracketPayload, 0, len(brackets))}
	for _, b := range brackets {
		out.PriceBrackets = append(out.PriceBrackets, BracketPayload{Quantity: b.Quantity, Price: b.Price.InexactFloat64()})
	}
	if err := s.publisher.Publish(ctx, out); err != nil {
		return err
	}
	s.log.Info("pricing calculated", "product_id", productID, "price", base.String())
	return nil
}
