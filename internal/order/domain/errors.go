package domain

import (
	"fmt"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
)

type ArgumentError struct {
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string            { return fmt.Sprintf("%s %s", e.Argument, e.Reason) }
func (e *ArgumentError) ErrorKind() apperror.Kind { return apperror.KindValidation }

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string            { return e.Reason }
func (e *ValidationError) ErrorKind() apperror.Kind { return apperror.KindValidation }

type InvalidOrderStateError struct {
	OrderID string
	Status  OrderStatus
	Action  string
}

func (e *InvalidOrderStateError) Error() string {
	return fmt.Sprintf("cannot %s order %s in status %s", e.Action, e.OrderID, e.Status)
}

func (e *InvalidOrderStateError) ErrorKind() apperror.Kind { return apperror.KindInvalidState }

// OrderNotConfirmedError is the InvalidOrderStateError raised by Complete.
// errors.As matches it as either type.
type OrderNotConfirmedError struct {
	InvalidOrderStateError
}

func (e *OrderNotConfirmedError) Error() string {
	return fmt.Sprintf("order %s is not confirmed (status %s)", e.OrderID, e.Status)
}

func (e *OrderNotConfirmedError) As(target any) bool {
	if t, ok := target.(**InvalidOrderStateError); ok {
		*t = &e.InvalidOrderStateError
		return true
	}
	return false
}

type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string            { return fmt.Sprintf("order %s not found", e.OrderID) }
func (e *NotFoundError) ErrorKind() apperror.Kind { return apperror.KindNotFound }
