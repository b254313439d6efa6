package ingest

import (
	"time"
)

// Event is a single order event from the upstream shop.
type Event struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
