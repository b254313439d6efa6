package bot

import (
	"context"
	"time"

	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/gateway/telegram"
	"kuryer-manager/internal/service/register"
)

// api is the subset of the Telegram gateway the router drives.
type api interface {
	Send(ctx context.Context, msg telegram.SendMessage) error
	Edit(ctx context.Context, msg telegram.EditMessageText) error
	AnswerCallback(ctx context.Context, ans telegram.AnswerCallbackQuery) error
	Delete(ctx context.Context, del telegram.DeleteMessage) error
}

type courierDirectory interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Courier, error)
}

type orderBook interface {
	ListByCourier(ctx context.Context, courierID int64, statuses []domain.OrderStatus, limit int) ([]domain.Order, error)
	CountByCourier(ctx context.Context, courierID int64, status domain.OrderStatus, since *time.Time) (int, error)
}

type lifecycleService interface {
	Accept(ctx context.Context, orderID string, telegramID int64) (*domain.Order, error)
	Advance(ctx context.Context, orderID string, target domain.OrderStatus) (*domain.Order, error)
}

type registrar interface {
	Begin(ctx context.Context, token string, telegramID int64, username string) (*register.Session, error)
	SubmitFirstName(s *register.Session, text string) error
	SubmitLastName(s *register.Session, text string) error
	SubmitPhone(s *register.Session, text string, fromContact bool) error
	Complete(ctx context.Context, s *register.Session, regionName string) (*domain.Courier, error)
}
