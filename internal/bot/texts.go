package bot

import (
	"fmt"
	"strconv"
	"strings"

	"kuryer-manager/internal/domain"
)

// Main menu button labels. The router matches incoming text against these.
const (
	menuMyOrders = "📦 Mening buyurtmalarim"
	menuProfile  = "👤 Mening profilim"
	menuStats    = "📊 Statistika"
	menuHistory  = "📜 Buyurtmalar tarixi"
)

// FormatPrice renders a sum with thousands separators, e.g. 1250000 -> "1,250,000".
func FormatPrice(v float64) string {
	s := strconv.FormatInt(int64(v), 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// NewOrderText is the fan-out notification body (HTML).
func NewOrderText(o *domain.Order) string {
	return fmt.Sprintf(
		"🆕 <b>Yangi buyurtma!</b>\n\n"+
			"🆔 ID: <code>%s</code>\n"+
			"👤 Mijoz: <b>%s</b>\n"+
			"📱 Telefon: <a href='tel:%s'>%s</a>\n"+
			"📍 Manzil: %s\n"+
			"💰 Summa: %s so'm\n"+
			"💳 To'lov: %s",
		o.ID, o.CustomerName, o.Phone, o.Phone, o.Address,
		FormatPrice(o.TotalPrice), o.Payment.DisplayName(),
	)
}

func acceptedOrderText(o *domain.Order) string {
	return fmt.Sprintf(
		"✅ <b>Buyurtma qabul qilindi!</b>\n\n"+
			"🆔 ID: <code>%s</code>\n"+
			"👤 Mijoz: <b>%s</b>\n"+
			"📱 Telefon: <a href='tel:%s'>%s</a>\n"+
			"📍 Manzil: %s\n"+
			"💰 Summa: %s so'm",
		o.ID, o.CustomerName, o.Phone, o.Phone, o.Address, FormatPrice(o.TotalPrice),
	)
}

func statusLabel(s domain.OrderStatus) string {
	switch s {
	case domain.OrderDelivering:
		return "🚚 Yo'lda"
	case domain.OrderDelivered:
		return "✅ Yetkazildi"
	default:
		return string(s)
	}
}

func advancedOrderText(o *domain.Order, target domain.OrderStatus) string {
	return fmt.Sprintf(
		"%s\n\n"+
			"🆔 ID: <code>%s</code>\n"+
			"👤 Mijoz: <b>%s</b>\n"+
			"💰 Summa: %s so'm",
		statusLabel(target), o.ID, o.CustomerName, FormatPrice(o.TotalPrice),
	)
}

func activeOrderText(o *domain.Order) string {
	emoji, label := "🟡", "Qabul qilingan"
	if o.Status == domain.OrderDelivering {
		emoji, label = "🔵", "Yo'lda"
	}
	return fmt.Sprintf(
		"%s <b>Buyurtma #%s</b>\n\n"+
			"👤 Mijoz: <b>%s</b>\n"+
			"📱 Telefon: <a href='tel:%s'>%s</a>\n"+
			"📍 Manzil: %s\n"+
			"💰 Summa: %s so'm\n"+
			"💳 To'lov: %s\n"+
			"📊 Status: <b>%s</b>",
		emoji, o.ID, o.CustomerName, o.Phone, o.Phone, o.Address,
		FormatPrice(o.TotalPrice), o.Payment.DisplayName(), label,
	)
}

func historyEmoji(s domain.OrderStatus) string {
	switch s {
	case domain.OrderPending:
		return "⏳"
	case domain.OrderAccepted:
		return "🟡"
	case domain.OrderDelivering:
		return "🔵"
	case domain.OrderDelivered:
		return "✅"
	case domain.OrderCancelled:
		return "❌"
	default:
		return "❓"
	}
}

func greetingText(c *domain.Courier) string {
	return fmt.Sprintf(
		"👋 Salom, %s!\n\n📍 Viloyat: %s\n📱 Telefon: %s",
		c.FullName(), c.Region.DisplayName(), c.Phone,
	)
}

func inactiveCourierText(c *domain.Courier) string {
	return fmt.Sprintf(
		"❌ Hurmatli %s,\nSizning holatingiz: '%s'\nAdministrator bilan bog'laning.",
		c.FullName(), c.Status.DisplayName(),
	)
}

func registeredText(c *domain.Courier) string {
	return fmt.Sprintf(
		"✅ Tabriklayman, %s!\n\n"+
			"📍 Viloyat: %s\n"+
			"📱 Telefon: %s\n\n"+
			"Yangi buyurtmalar haqida xabarnomalar olasiz.",
		c.FirstName, c.Region.DisplayName(), c.Phone,
	)
}

const (
	textTokenRequired = "❌ Token kerak!\n\nFoydalanish: /start <token>\n\nMisol: /start ABC123XYZ"
	textTokenUnknown  = "❌ Noto'g'ri yoki ishlatilgan token!"
	textTokenExpired  = "❌ Token muddati o'tgan!"
	textTokenAccepted = "✅ Token tasdiqlandi!\n\n📝 Ismingizni kiriting:"

	textAskLastName  = "📝 Familiyangizni kiriting:"
	textAskPhone     = "📱 Telefon raqamingizni yuboring:"
	textAskRegion    = "📍 Viloyatingizni tanlang:"
	textNameTooShort = "❌ Ism juda qisqa. Qaytadan kiriting:"
	textLastTooShort = "❌ Familiya juda qisqa. Qaytadan kiriting:"
	textBadPhone     = "❌ Noto'g'ri format! +998XXXXXXXXX"
	textBadRegion    = "❌ Noto'g'ri viloyat! Tugmadan tanlang:"

	textNothingToCancel = "Hech narsa bekor qilish uchun yo'q."
	textCancelled       = "❌ Ro'yxatdan o'tish bekor qilindi.\n\nQaytadan: /start <token>"

	textNotRegistered = "❌ Siz ro'yxatdan o'tmagansiz!"
	textNoActive      = "📭 Sizda faol buyurtmalar yo'q."
	textNoHistory     = "📭 Buyurtmalar tarixi bo'sh."

	textAlreadyAssigned = "Bu buyurtma allaqachon qabul qilingan!"
	textOrderNotFound   = "Buyurtma topilmadi!"
	textGenericError    = "❌ Xatolik yuz berdi!"
	textTryLater        = "❌ Server xatosi. Iltimos, keyinroq urinib ko'ring."
	textRejectAck       = "Buyurtma rad etildi."
)
