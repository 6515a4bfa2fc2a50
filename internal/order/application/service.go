package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/commerce-choreography/internal/order/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
)

type Service struct {
	log       *slog.Logger
	repo      OrderRepository
	publisher envelope.Publisher
}

func NewService(log *slog.Logger, repo OrderRepository, publisher envelope.Publisher) *Service {
	return &Service{log: log, repo: repo, publisher: publisher}
}

type CreateOrderCmd struct {
	UserID     string
	Products   []string
	Priority   bool
	TotalPrice *decimal.Decimal
}

func (s *Service) CreateOrder(ctx context.Context, cmd CreateOrderCmd) (*domain.Order, error) {
	create := domain.CreateStandard
	if cmd.Priority {
		create = domain.CreatePriority
	}
	o, err := create(cmd.UserID, cmd.Products)
	if err != nil {
		return nil, err
	}
	if cmd.TotalPrice != nil {
		if err := o.SetPrice(*cmd.TotalPrice); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	evt := domain.OrderCreated{OrderID: o.ID, UserID: o.UserID, Products: o.Products, Type: string(o.Type)}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Error("order stored but event not published", "order_id", o.ID, "err", err)
		return o, err
	}
	s.log.Info("order created", "order_id", o.ID, "products", len(o.Products))
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// ConfirmOrder applies a successful reservation. Redelivered confirmations
// and confirmations for orders already settled are acknowledged unchanged.
func (s *Service) ConfirmOrder(ctx context.Context, id string) error {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return ackIfGone(s.log, id, err)
	}
	if o.Status != domain.StatusCreated {
		s.log.Info("confirmation ignored", "order_id", id, "status", o.Status)
		return nil
	}
	if err := o.Confirm(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}
	return s.publisher.Publish(ctx, domain.OrderConfirmed{OrderID: o.ID, UserID: o.UserID})
}

func (s *Service) MarkNoStock(ctx context.Context, id string) error {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return ackIfGone(s.log, id, err)
	}
	if o.Status == domain.StatusNoStock {
		return nil
	}
	if err := o.MarkStockReservationFailed(); err != nil {
		var invalid *domain.InvalidOrderStateError
		if errors.As(err, &invalid) {
			s.log.Warn("reservation failure for settled order ignored", "order_id", id, "status", o.Status)
			return nil
		}
		return err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}
	s.log.Info("order out of stock", "order_id", id)
	return nil
}

func (s *Service) CompleteOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Complete(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, domain.OrderCompleted{OrderID: o.ID, UserID: o.UserID}); err != nil {
		s.log.Error("order completed but event not published", "order_id", o.ID, "err", err)
		return o, err
	}
	return o, nil
}

// ackIfGone drops inventory outcomes for orders this service never stored.
func ackIfGone(log *slog.Logger, id string, err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		log.Warn("event for unknown order ignored", "order_id", id)
		return nil
	}
	return err
}
