package domain

import (
	"fmt"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
)

type ValidationError struct {
	ProductID string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.ProductID == "" {
		return fmt.Sprintf("invalid product: %s", e.Reason)
	}
	return fmt.Sprintf("invalid product %s: %s", e.ProductID, e.Reason)
}

func (e *ValidationError) ErrorKind() apperror.Kind { return apperror.KindValidation }

type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("product %s not found", e.ProductID) }

func (e *NotFoundError) ErrorKind() apperror.Kind { return apperror.KindNotFound }
