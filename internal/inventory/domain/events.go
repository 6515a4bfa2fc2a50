package domain

import "github.com/dmehra2102/commerce-choreography/pkg/envelope"

const (
	EventProductAdded           = "inventory.productAdded.v1"
	EventStockUpdated           = "inventory.stockUpdated.v1"
	EventStockReserved          = "inventory.stockReserved.v1"
	EventStockReservationFailed = "inventory.stockReservationFailed.v1"
)

// ProductAdded is internal to inventory; it only carries what the
// workflow needs.
type ProductAdded struct {
	ProductID string `json:"productId"`
}

func (e ProductAdded) EventType() string      { return EventProductAdded }
func (e ProductAdded) ConversationID() string { return e.ProductID }

type StockUpdated struct {
	ProductID          string `json:"productId"`
	PreviousStockLevel int    `json:"previousStockLevel"`
	NewStockLevel      int    `json:"newStockLevel"`
}

func (e StockUpdated) EventType() string      { return EventStockUpdated }
func (e StockUpdated) ConversationID() string { return e.ProductID }

type StockReserved struct {
	OrderID string `json:"orderId"`
}

func (e StockReserved) EventType() string      { return EventStockReserved }
func (e StockReserved) ConversationID() string { return e.OrderID }

type StockReservationFailed struct {
	OrderID   string `json:"orderId"`
	ProductID string `json:"productId,omitempty"`
}

func (e StockReservationFailed) EventType() string      { return EventStockReservationFailed }
func (e StockReservationFailed) ConversationID() string { return e.OrderID }

// Outcome is the public event describing a reservation.
func (r Reservation) Outcome() envelope.Event {
	if r.Reserved {
		return StockReserved{OrderID: r.OrderID}
	}
	return StockReservationFailed{OrderID: r.OrderID, ProductID: r.FailedProductID}
}
