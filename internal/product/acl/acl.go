// Package acl translates other services' public events into product-owned
// internal events.
package acl

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/commerce-choreography/internal/product/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/acl"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
)

const (
	EventInventoryStockUpdated = "inventory.stockUpdated.v1"
	EventPricingCalculated     = "pricing.pricingCalculated.v1"
)

type inventoryStockUpdated struct {
	ProductID          string `json:"productId"`
	PreviousStockLevel *int   `json:"previousStockLevel"`
	NewStockLevel      *int   `json:"newStockLevel"`
}

type pricingBracket struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type pricingCalculated struct {
	ProductID     string           `json:"productId"`
	PriceBrackets []pricingBracket `json:"priceBrackets"`
}

type Translator struct {
	log       *slog.Logger
	publisher envelope.Publisher
}

func NewTranslator(log *slog.Logger, publisher envelope.Publisher) *Translator {
	return &Translator{log: log, publisher: publisher}
}

func (t *Translator) Handle(ctx context.Context, env envelope.Envelope) bool {
	switch env.Type {
	case EventInventoryStockUpdated:
		return acl.Translate(ctx, t.log, env, t.stockUpdated)
	case EventPricingCalculated:
		return acl.Translate(ctx, t.log, env, t.pricingCalculated)
	default:
		t.log.Warn("unsupported event type", "type", env.Type)
		return false
	}
}

func (t *Translator) stockUpdated(ctx context.Context, in inventoryStockUpdated) error {
	if err := acl.Required("productId", in.ProductID); err != nil {
		return err
	}
	if in.NewStockLevel == nil || *in.NewStockLevel < 0 {
		return acl.Invalid("newStockLevel must be present and non-negative")
	}
	return t.publisher.Publish(ctx, domain.StockUpdated{ProductID: in.ProductID, StockLevel: *in.NewStockLevel})
}

func (t *Translator) pricingCalculated(ctx context.Context, in pricingCalculated) error {
	if err := acl.Required("productId", in.ProductID); err != nil {
		return err
	}
	if len(in.PriceBrackets) == 0 {
		return acl.Invalid("at least one price bracket is required")
	}
	out := domain.PricingChanged{ProductID: in.ProductID, PriceBrackets: make([]domain.BracketPayload, 0, len(in.PriceBrackets))}
	for _, b := range in.PriceBrackets {
		if b.Quantity <= 0 || b.Price <= 0 {
			return acl.Invalid("bracket %d@%v is not valid", b.Quantity, b.Price)
		}
		out.PriceBrackets = append(out.PriceBrackets, domain.BracketPayload{Quantity: b.Quantity, Price: b.Price})
	}
	return t.publisher.Publish(ctx, out)
}
