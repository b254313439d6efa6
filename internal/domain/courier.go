package domain

import "time"

// Courier represents a delivery agent identified by a Telegram account,
// scoped to one region. Registered through the one-time-token onboarding flow.
type Courier struct {
	ID               int64
	FirstName        string
	LastName         string
	Phone            string
	TelegramID       int64
	TelegramUsername string
	Region           RegionCode
	Status           CourierStatus

	TotalOrders     int
	CompletedOrders int
	CancelledOrders int

	CreatedAt time.Time
}

// FullName returns the courier's display name.
func (c Courier) FullName() string {
	return c.FirstName + " " + c.LastName
}
