package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order represents a customer purchase request tracked through a fixed
// status lifecycle. Courier is set exactly once, on pending -> accepted.
type Order struct {
	ID           string
	CourierID    *int64
	CustomerName string
	Phone        string
	Address      string
	Region       string
	District     string
	Payment      PaymentMethod
	Comment      string
	TotalPrice   float64
	ItemIDs      []int64
	Status       OrderStatus

	CreatedAt    time.Time
	AcceptedAt   *time.Time
	DeliveringAt *time.Time
	DeliveredAt  *time.Time
	CancelledAt  *time.Time
}

// OrderItem is one storefront cart line: a product reference and a quantity.
type OrderItem struct {
	ProductID int64
	Quantity  float64
}

// NewOrderID generates a short opaque order identifier:
// the first 8 hex characters of a UUID, uppercased.
func NewOrderID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}
