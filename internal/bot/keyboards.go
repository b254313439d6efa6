package bot

import (
	"fmt"

	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/gateway/telegram"
)

// Callback data prefixes consumed by the router. The order id rides inside
// the callback token, e.g. "accept_7F3A21BC" or "status_7F3A21BC_delivering".
const (
	cbAcceptPrefix = "accept_"
	cbRejectPrefix = "reject_"
	cbStatusPrefix = "status_"
	cbBackToOrders = "back_to_orders"
)

// AcceptCallback builds the callback token of the accept button.
func AcceptCallback(orderID string) string { return cbAcceptPrefix + orderID }

// RejectCallback builds the callback token of the reject button.
func RejectCallback(orderID string) string { return cbRejectPrefix + orderID }

// StatusCallback builds the callback token of a status-advance button.
func StatusCallback(orderID string, target domain.OrderStatus) string {
	return fmt.Sprintf("%s%s_%s", cbStatusPrefix, orderID, target)
}

// OrderActionKeyboard offers accept/reject for a freshly broadcast order.
func OrderActionKeyboard(orderID string) telegram.InlineKeyboardMarkup {
	return telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "✅ Qabul qilish", CallbackData: AcceptCallback(orderID)},
			{Text: "❌ Rad etish", CallbackData: RejectCallback(orderID)},
		}},
	}
}

// OrderStatusKeyboard offers the next legal transition for an assigned order.
func OrderStatusKeyboard(orderID string, current domain.OrderStatus) telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	switch current {
	case domain.OrderAccepted:
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: "🚚 Yo'lda", CallbackData: StatusCallback(orderID, domain.OrderDelivering)},
		})
	case domain.OrderDelivering:
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: "✅ Yetkazildi", CallbackData: StatusCallback(orderID, domain.OrderDelivered)},
		})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{
		{Text: "🔙 Orqaga", CallbackData: cbBackToOrders},
	})
	return telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// MainMenuKeyboard is the persistent courier menu.
func MainMenuKeyboard() telegram.ReplyKeyboardMarkup {
	return telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: menuMyOrders}},
			{{Text: menuProfile}, {Text: menuStats}},
			{{Text: menuHistory}},
		},
		ResizeKeyboard: true,
	}
}

// PhoneKeyboard asks for a shared contact during registration.
func PhoneKeyboard() telegram.ReplyKeyboardMarkup {
	return telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: "📱 Telefon yuborish", RequestContact: true}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// RegionKeyboard lists the regions two per row during registration.
func RegionKeyboard() telegram.ReplyKeyboardMarkup {
	names := domain.RegionDisplayNames()
	var rows [][]telegram.KeyboardButton
	for i := 0; i < len(names); i += 2 {
		row := []telegram.KeyboardButton{{Text: names[i]}}
		if i+1 < len(names) {
			row = append(row, telegram.KeyboardButton{Text: names[i+1]})
		}
		rows = append(rows, row)
	}
	return telegram.ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// RemoveKeyboard clears any reply keyboard.
func RemoveKeyboard() telegram.ReplyKeyboardRemove {
	return telegram.ReplyKeyboardRemove{RemoveKeyboard: true}
}
