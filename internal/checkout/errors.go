package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrRetriesExhausted = errors.New("order submission retries exhausted")
)

// ItemUnavailableError means a cart line no longer resolves to an
// available menu item. The user must remove the line before retrying.
type ItemUnavailableError struct {
	ItemID string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("item %s is no longer available", e.ItemID)
}

// RejectedError is a definitive backend refusal (4xx). Retrying the
// same payload will not help.
type RejectedError struct {
	Code   string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("order rejected by backend (%s): %s", e.Code, e.Reason)
}
