package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/commerce-choreography/internal/product/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
)

// Service owns the Product aggregate. State is written before the event is
// published, so a publish failure is returned to the caller with the write
// already committed.
type Service struct {
	log       *slog.Logger
	repo      ProductRepository
	publisher envelope.Publisher
}

func NewService(log *slog.Logger, repo ProductRepository, publisher envelope.Publisher) *Service {
	return &Service{log: log, repo: repo, publisher: publisher}
}

func (s *Service) CreateProduct(ctx context.Context, name string, price decimal.Decimal) (*domain.Product, error) {
	p, err := domain.NewProduct(name, price)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, domain.NewProductCreated(p)); err != nil {
		s.log.Error("product stored but event not published", "product_id", p.ID, "err", err)
		return p, err
	}
	s.log.Info("product created", "product_id", p.ID)
	return p, nil
}

// UpdateProduct returns the product unchanged, without saving or publishing,
// when name and price already match.
func (s *Service) UpdateProduct(ctx context.Context, id, name string, price decimal.Decimal) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(name, price); err != nil {
		return nil, err
	}
	if !p.Updated {
		s.log.Info("product update not required", "product_id", id)
		return p, nil
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, domain.NewProductUpdated(p)); err != nil {
		s.log.Error("product updated but event not published", "product_id", p.ID, "err", err)
		return p, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.publisher.Publish(ctx, domain.ProductDeleted{ProductID: id})
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

// HandlePricingChanged replaces the bracket set wholesale.
func (s *Service) HandlePricingChanged(ctx context.Context, env envelope.Envelope) error {
	var evt domain.PricingChanged
	if err := env.Decode(&evt); err != nil {
		return apperror.Deserialization(err)
	}
	p, err := s.repo.Get(ctx, evt.ProductID)
	if err != nil {
		return ackIfGone(s.log, evt.ProductID, err)
	}
	p.ClearPricing()
	for _, b := range evt.PriceBrackets {
		p.AddPriceBracket(domain.PriceBracket{Quantity: b.Quantity, Price: decimal.NewFromFloat(b.Price)})
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.log.Info("pricing applied", "product_id", p.ID, "brackets", len(p.PriceBrackets))
	return nil
}

func (s *Service) HandleStockUpdated(ctx context.Context, env envelope.Envelope) error {
	var evt domain.StockUpdated
	if err := env.Decode(&evt); err != nil {
		return apperror.Deserialization(err)
	}
	p, err := s.repo.Get(ctx, evt.ProductID)
	if err != nil {
		return ackIfGone(s.log, evt.ProductID, err)
	}
	if err := p.UpdateStockLevel(evt.StockLevel); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// ackIfGone drops events for products that were deleted in the meantime.
func ackIfGone(log *slog.Logger, id string, err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		log.Warn("event for unknown product ignored", "product_id", id)
		return nil
	}
	return err
}
