// Package acl admits products announced by the product service into the
// inventory context.
package acl

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/commerce-choreography/internal/inventory/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/acl"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
)

const EventProductCreated = "product.productCreated.v1"

// publicProductCreated is the product service's schema. Name and price
// are read only to be dropped.
type publicProductCreated struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type ProductCreatedTranslator struct {
	log       *slog.Logger
	publisher envelope.Publisher
}

func NewProductCreatedTranslator(log *slog.Logger, publisher envelope.Publisher) *ProductCreatedTranslator {
	return &ProductCreatedTranslator{log: log, publisher: publisher}
}

func (t *ProductCreatedTranslator) Handle(ctx context.Context, env envelope.Envelope) bool {
	return acl.Translate(ctx, t.log, env, func(ctx context.Context, in publicProductCreated) error {
		if err := acl.Required("productId", in.ProductID); err != nil {
			return err
		}
		return t.publisher.Publish(ctx, domain.ProductAdded{ProductID: in.ProductID})
	})
}
