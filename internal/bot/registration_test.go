package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/bot"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/gateway/telegram"
	"kuryer-manager/internal/service/register"
)

// stubTokenRepo backs a real register.Machine in the dialog tests.
type stubTokenRepo struct {
	getUnusedFn func(token string) (*domain.RegistrationToken, error)
	consumeFn   func(tokenID int64, c *domain.Courier) (int64, error)
}

func (s stubTokenRepo) GetUnused(_ context.Context, token string) (*domain.RegistrationToken, error) {
	return s.getUnusedFn(token)
}

func (s stubTokenRepo) Consume(_ context.Context, tokenID int64, c *domain.Courier) (int64, error) {
	return s.consumeFn(tokenID, c)
}

func liveTokenRepo(t *testing.T, token string) stubTokenRepo {
	t.Helper()
	return stubTokenRepo{
		getUnusedFn: func(got string) (*domain.RegistrationToken, error) {
			if got != token {
				return nil, nil
			}
			return &domain.RegistrationToken{
				ID:        7,
				Token:     token,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
		consumeFn: func(tokenID int64, c *domain.Courier) (int64, error) {
			require.EqualValues(t, 7, tokenID)
			return 91, nil
		},
	}
}

// Полный проход регистрации от токена до главного меню.
func TestRegistration_FullWalk(t *testing.T) {
	t.Parallel()

	api := &recordingAPI{}
	machine := register.NewMachine(liveTokenRepo(t, "GOODTOKEN"), nil)
	r := bot.NewRouter(api, stubDirectory{}, stubOrderBook{}, stubLifecycle{}, machine, bot.NewSessions(), nil)
	ctx := context.Background()

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "/start GOODTOKEN")))
	require.Contains(t, api.lastSent(t).Text, "Token tasdiqlandi")

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Aziz")))
	require.Contains(t, api.lastSent(t).Text, "Familiyangizni kiriting")

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Karimov")))
	require.Contains(t, api.lastSent(t).Text, "Telefon raqamingizni yuboring")

	require.NoError(t, r.HandleUpdate(ctx, contactUpdate(42, "998901234567")))
	require.Contains(t, api.lastSent(t).Text, "Viloyatingizni tanlang")

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Samarqand")))

	done := api.lastSent(t)
	require.Contains(t, done.Text, "Tabriklayman, Aziz")
	require.Contains(t, done.Text, "Samarqand")
	require.Contains(t, done.Text, "+998901234567")
	require.IsType(t, telegram.ReplyKeyboardMarkup{}, done.ReplyMarkup)

	// сессии больше нет, обычный текст не попадает в диалог
	before := len(api.sent)
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "salom")))
	require.Len(t, api.sent, before)
}

func TestRegistration_ShortNameReprompts(t *testing.T) {
	t.Parallel()

	api := &recordingAPI{}
	machine := register.NewMachine(liveTokenRepo(t, "GOODTOKEN"), nil)
	r := bot.NewRouter(api, stubDirectory{}, stubOrderBook{}, stubLifecycle{}, machine, bot.NewSessions(), nil)
	ctx := context.Background()

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "/start GOODTOKEN")))

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "A")))
	require.Contains(t, api.lastSent(t).Text, "Ism juda qisqa")

	// состояние не сдвинулось, корректный ввод продолжает с того же шага
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Aziz")))
	require.Contains(t, api.lastSent(t).Text, "Familiyangizni kiriting")
}

func TestRegistration_TypedPhoneValidation(t *testing.T) {
	t.Parallel()

	api := &recordingAPI{}
	machine := register.NewMachine(liveTokenRepo(t, "GOODTOKEN"), nil)
	r := bot.NewRouter(api, stubDirectory{}, stubOrderBook{}, stubLifecycle{}, machine, bot.NewSessions(), nil)
	ctx := context.Background()

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "/start GOODTOKEN")))
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Aziz")))
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Karimov")))

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "12345")))
	require.Contains(t, api.lastSent(t).Text, "Noto'g'ri format")

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "+998901234567")))
	require.Contains(t, api.lastSent(t).Text, "Viloyatingizni tanlang")
}

func TestRegistration_BadRegionReprompts(t *testing.T) {
	t.Parallel()

	api := &recordingAPI{}
	machine := register.NewMachine(liveTokenRepo(t, "GOODTOKEN"), nil)
	r := bot.NewRouter(api, stubDirectory{}, stubOrderBook{}, stubLifecycle{}, machine, bot.NewSessions(), nil)
	ctx := context.Background()

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "/start GOODTOKEN")))
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Aziz")))
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Karimov")))
	require.NoError(t, r.HandleUpdate(ctx, contactUpdate(42, "998901234567")))

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Atlantida")))
	require.Contains(t, api.lastSent(t).Text, "Noto'g'ri viloyat")

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Buxoro")))
	require.Contains(t, api.lastSent(t).Text, "Tabriklayman")
}

func TestRegistration_TokenWentStaleMidDialog(t *testing.T) {
	t.Parallel()

	api := &recordingAPI{}
	repo := liveTokenRepo(t, "GOODTOKEN")
	repo.consumeFn = func(int64, *domain.Courier) (int64, error) {
		return 0, apperr.Conflict
	}
	machine := register.NewMachine(repo, nil)
	r := bot.NewRouter(api, stubDirectory{}, stubOrderBook{}, stubLifecycle{}, machine, bot.NewSessions(), nil)
	ctx := context.Background()

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "/start GOODTOKEN")))
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Aziz")))
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Karimov")))
	require.NoError(t, r.HandleUpdate(ctx, contactUpdate(42, "998901234567")))

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Samarqand")))
	require.Contains(t, api.lastSent(t).Text, "Token muddati o'tgan")

	// диалог сброшен, меню-ввод больше не шаг регистрации
	before := len(api.sent)
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "salom")))
	require.Len(t, api.sent, before)
}

func TestCancel_DropsDialog(t *testing.T) {
	t.Parallel()

	api := &recordingAPI{}
	machine := register.NewMachine(liveTokenRepo(t, "GOODTOKEN"), nil)
	r := bot.NewRouter(api, stubDirectory{}, stubOrderBook{}, stubLifecycle{}, machine, bot.NewSessions(), nil)
	ctx := context.Background()

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "/cancel")))
	require.Contains(t, api.lastSent(t).Text, "Hech narsa bekor qilish")

	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "/start GOODTOKEN")))
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "/cancel")))
	require.Contains(t, api.lastSent(t).Text, "bekor qilindi")

	before := len(api.sent)
	require.NoError(t, r.HandleUpdate(ctx, messageUpdate(42, "Aziz")))
	require.Len(t, api.sent, before)
}
