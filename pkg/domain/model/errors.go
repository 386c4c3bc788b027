package model

import "errors"

var ErrInvalidRequest = errors.New("invalid request")

type ErrorKind int

const (
	StorageError ErrorKind = iota
	ValidationError
	NotFoundError
	InsufficientInventoryError
)

var errorKindNames = map[ErrorKind]string{
	StorageError:               "storage_error",
	ValidationError:            "validation_error",
	NotFoundError:              "not_found",
	InsufficientInventoryError: "insufficient_inventory",
}

func (k ErrorKind) String() string {
	return errorKindNames[k]
}

// KindOf classifies err. Anything that is not a known domain error is
// treated as a storage failure.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidRequest):
		return ValidationError
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrOrderNotFound):
		return NotFoundError
	case errors.Is(err, ErrInsufficientInventory):
		return InsufficientInventoryError
	default:
		return StorageError
	}
}
