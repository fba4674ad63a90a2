package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced row does not exist. Services
// translate it into their own sentinels.
var ErrNotFound = errors.New("not found")

// InsufficientStockError reports a conditional stock decrement that matched
// no row because the requested quantity exceeds the available stock. The
// surrounding transaction is rolled back, so no earlier decrement survives.
type InsufficientStockError struct {
	ProductID uuid.UUID
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}
