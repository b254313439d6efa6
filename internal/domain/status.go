package domain

import (
	"regexp"
	"strings"
)

type (
	// OrderStatus represents the status of an order.
	OrderStatus string
	// CourierStatus represents the status of a courier.
	CourierStatus string
	// PaymentMethod represents how a customer pays for an order.
	PaymentMethod string
)

// List of possible order statuses
const (
	OrderPending    OrderStatus = "pending"
	OrderAccepted   OrderStatus = "accepted"
	OrderDelivering OrderStatus = "delivering"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// List of possible courier statuses
const (
	CourierPending  CourierStatus = "pending"
	CourierActive   CourierStatus = "active"
	CourierInactive CourierStatus = "inactive"
	CourierBlocked  CourierStatus = "blocked"
)

// List of possible payment methods
const (
	PaymentCash  PaymentMethod = "naqd"
	PaymentCard  PaymentMethod = "karta"
	PaymentClick PaymentMethod = "click"
	PaymentBank  PaymentMethod = "bank"
)

// successors maps each order status to its legal forward transitions.
// Terminal states have no successors.
var successors = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderAccepted, OrderCancelled},
	OrderAccepted:   {OrderDelivering, OrderCancelled},
	OrderDelivering: {OrderDelivered},
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderDelivering, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransit reports whether target is a legal successor of s.
func (s OrderStatus) CanTransit(target OrderStatus) bool {
	for _, next := range successors[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return len(successors[s]) == 0
}

// Valid checks if the CourierStatus is valid
func (s CourierStatus) Valid() bool {
	switch s {
	case CourierPending, CourierActive, CourierInactive, CourierBlocked:
		return true
	}
	return false
}

// DisplayName returns the native display name of a courier status.
func (s CourierStatus) DisplayName() string {
	switch s {
	case CourierPending:
		return "Kutilmoqda"
	case CourierActive:
		return "Faol"
	case CourierInactive:
		return "Faol emas"
	case CourierBlocked:
		return "Bloklangan"
	}
	return string(s)
}

// DisplayName returns the native display name of a payment method.
func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentCash:
		return "Naqd"
	case PaymentCard:
		return "Karta orqali"
	case PaymentClick:
		return "Click / Payme"
	case PaymentBank:
		return "Bank orqali"
	}
	return string(m)
}

// MapPayment translates a storefront payment key into a PaymentMethod.
// Unknown keys fall back to cash, mirroring the checkout form behavior.
func MapPayment(key string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "cash":
		return PaymentCash
	case "card":
		return PaymentCard
	case "click", "payme":
		return PaymentClick
	case "bank":
		return PaymentBank
	default:
		return PaymentCash
	}
}

// rePhone is a regex to validate normalized phone numbers
var rePhone = regexp.MustCompile(`^\+[0-9]{9,15}$`)

// ValidatePhone validates the normalized phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
