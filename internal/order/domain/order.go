package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusCreated   OrderStatus = "Created"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusCompleted OrderStatus = "Completed"
	StatusNoStock   OrderStatus = "NoStock"
)

type OrderType string

const (
	TypeStandard OrderType = "Standard"
	TypePriority OrderType = "Priority"
)

// Order moves Created -> Confirmed -> Completed, or to NoStock when stock
// could not be reserved. No method moves it backwards.
type Order struct {
	ID         string
	UserID     string
	Products   []string
	OrderDate  time.Time
	Type       OrderType
	Status     OrderStatus
	TotalPrice decimal.Decimal
}

func CreateStandard(userID string, products []string) (*Order, error) {
	return create(userID, products, TypeStandard)
}

func CreatePriority(userID string, products []string) (*Order, error) {
	return create(userID, products, TypePriority)
}

func create(userID string, products []string, typ OrderType) (*Order, error) {
	if products == nil {
		return nil, &ArgumentError{Argument: "products", Reason: "must not be nil"}
	}
	return &Order{
		ID:         uuid.New().String(),
		UserID:     userID,
		Products:   append([]string{}, products...),
		OrderDate:  time.Now().UTC(),
		Type:       typ,
		Status:     StatusCreated,
		TotalPrice: decimal.Zero,
	}, nil
}

// Reconstitute loads an order from storage. It does not validate.
func Reconstitute(id, userID string, products []string, orderDate time.Time, typ OrderType, status OrderStatus, total decimal.Decimal) *Order {
	return &Order{
		ID:         id,
		UserID:     userID,
		Products:   products,
		OrderDate:  orderDate,
		Type:       typ,
		Status:     status,
		TotalPrice: total,
	}
}

func (o *Order) Confirm() error {
	if o.Status != StatusCreated {
		return &InvalidOrderStateError{OrderID: o.ID, Status: o.Status, Action: "confirm"}
	}
	o.Status = StatusConfirmed
	return nil
}

func (o *Order) Complete() error {
	if o.Status != StatusConfirmed {
		return &OrderNotConfirmedError{InvalidOrderStateError{OrderID: o.ID, Status: o.Status, Action: "complete"}}
	}
	o.Status = StatusCompleted
	return nil
}

// MarkStockReservationFailed moves a live order to NoStock. Repeating it is
// a no-op; a completed order cannot fall back to NoStock.
func (o *Order) MarkStockReservationFailed() error {
	switch o.Status {
	case StatusCreated, StatusConfirmed, StatusNoStock:
		o.Status = StatusNoStock
		return nil
	default:
		return &InvalidOrderStateError{OrderID: o.ID, Status: o.Status, Action: "mark out of stock"}
	}
}

func (o *Order) SetPrice(total decimal.Decimal) error {
	if total.IsNegative() {
		return &ValidationError{Reason: "total price cannot be negative"}
	}
	if !total.Equal(total.Truncate(2)) {
		return &ValidationError{Reason: "total price must have at most 2 decimal places"}
	}
	o.TotalPrice = total
	return nil
}

func (o *Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusNoStock
}
