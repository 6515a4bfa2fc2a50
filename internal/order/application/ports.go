package application

import (
	"context"

	"github.com/dmehra2102/commerce-choreography/internal/order/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	Update(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
}
