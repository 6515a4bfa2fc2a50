// Package acl turns inventory reservation outcomes into order commands.
package acl

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/commerce-choreography/pkg/acl"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
)

const (
	EventStockReserved          = "inventory.stockReserved.v1"
	EventStockReservationFailed = "inventory.stockReservationFailed.v1"
)

type OrderCommands interface {
	ConfirmOrder(ctx context.Context, id string) error
	MarkNoStock(ctx context.Context, id string) error
}

type reservationOutcome struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId"`
}

type Translator struct {
	log      *slog.Logger
	commands OrderCommands
}

func NewTranslator(log *slog.Logger, commands OrderCommands) *Translator {
	return &Translator{log: log, commands: commands}
}

func (t *Translator) Handle(ctx context.Context, env envelope.Envelope) bool {
	switch env.Type {
	case EventStockReserved:
		return acl.Translate(ctx, t.log, env, func(ctx context.Context, in reservationOutcome) error {
			if err := acl.Required("orderId", in.OrderID); err != nil {
				return err
			}
			return t.commands.ConfirmOrder(ctx, in.OrderID)
		})
	case EventStockReservationFailed:
		return acl.Translate(ctx, t.log, env, func(ctx context.Context, in reservationOutcome) error {
			if err := acl.Required("orderId", in.OrderID); err != nil {
				return err
			}
			if in.ProductID != "" {
				t.log.Info("reservation failed", "order_id", in.OrderID, "product_id", in.ProductID)
			}
			return t.commands.MarkNoStock(ctx, in.OrderID)
		})
	default:
		t.log.Warn("translator received unsupported type", "type", env.Type)
		return false
	}
}
