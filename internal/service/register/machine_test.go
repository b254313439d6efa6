package register_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/service/register"
)

type stubTokens struct {
	getFn     func(context.Context, string) (*domain.RegistrationToken, error)
	consumeFn func(context.Context, int64, *domain.Courier) (int64, error)
}

func (s *stubTokens) GetUnused(ctx context.Context, token string) (*domain.RegistrationToken, error) {
	if s.getFn == nil {
		return nil, nil
	}
	return s.getFn(ctx, token)
}

func (s *stubTokens) Consume(ctx context.Context, tokenID int64, c *domain.Courier) (int64, error) {
	if s.consumeFn == nil {
		return 0, nil
	}
	return s.consumeFn(ctx, tokenID, c)
}

func liveToken(id int64) *domain.RegistrationToken {
	return &domain.RegistrationToken{
		ID:        id,
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestBegin(t *testing.T) {
	t.Parallel()

	t.Run("opens session on live token", func(t *testing.T) {
		t.Parallel()
		tokens := &stubTokens{getFn: func(_ context.Context, tok string) (*domain.RegistrationToken, error) {
			require.Equal(t, "tok", tok)
			return liveToken(7), nil
		}}
		m := register.NewMachine(tokens, nil)

		sess, err := m.Begin(context.Background(), "tok", 42, "aziz")
		require.NoError(t, err)
		require.Equal(t, register.StateFirstName, sess.State)
		require.EqualValues(t, 7, sess.TokenID)
		require.EqualValues(t, 42, sess.TelegramID)
		require.Equal(t, "aziz", sess.TelegramUsername)
	})

	t.Run("empty token is invalid", func(t *testing.T) {
		t.Parallel()
		m := register.NewMachine(&stubTokens{}, nil)
		_, err := m.Begin(context.Background(), "  ", 42, "")
		require.ErrorIs(t, err, apperr.Invalid)
	})

	t.Run("unknown token is not found", func(t *testing.T) {
		t.Parallel()
		m := register.NewMachine(&stubTokens{}, nil)
		_, err := m.Begin(context.Background(), "nope", 42, "")
		require.ErrorIs(t, err, apperr.NotFound)
	})

	t.Run("expired token conflicts", func(t *testing.T) {
		t.Parallel()
		tokens := &stubTokens{getFn: func(context.Context, string) (*domain.RegistrationToken, error) {
			return &domain.RegistrationToken{ID: 7, ExpiresAt: time.Now().Add(-time.Minute)}, nil
		}}
		m := register.NewMachine(tokens, nil)
		_, err := m.Begin(context.Background(), "tok", 42, "")
		require.ErrorIs(t, err, apperr.Conflict)
	})
}

func TestSteps_ValidateAndAdvance(t *testing.T) {
	t.Parallel()

	m := register.NewMachine(&stubTokens{}, nil)
	sess := &register.Session{State: register.StateFirstName}

	// короткое имя не двигает состояние
	require.ErrorIs(t, m.SubmitFirstName(sess, "A"), apperr.Invalid)
	require.Equal(t, register.StateFirstName, sess.State)

	require.NoError(t, m.SubmitFirstName(sess, "  Aziz "))
	require.Equal(t, "Aziz", sess.FirstName)
	require.Equal(t, register.StateLastName, sess.State)

	require.ErrorIs(t, m.SubmitLastName(sess, "K"), apperr.Invalid)
	require.NoError(t, m.SubmitLastName(sess, "Karimov"))
	require.Equal(t, register.StatePhone, sess.State)

	require.ErrorIs(t, m.SubmitPhone(sess, "12345", false), apperr.Invalid)
	require.Equal(t, register.StatePhone, sess.State)

	require.NoError(t, m.SubmitPhone(sess, "998901234567", false))
	require.Equal(t, "+998901234567", sess.Phone)
	require.Equal(t, register.StateRegion, sess.State)
}

func TestComplete(t *testing.T) {
	t.Parallel()

	t.Run("consumes token and creates active courier", func(t *testing.T) {
		t.Parallel()
		var got *domain.Courier
		tokens := &stubTokens{consumeFn: func(_ context.Context, tokenID int64, c *domain.Courier) (int64, error) {
			require.EqualValues(t, 7, tokenID)
			got = c
			return 99, nil
		}}
		m := register.NewMachine(tokens, nil)
		sess := &register.Session{
			State:      register.StateRegion,
			TokenID:    7,
			TelegramID: 42,
			FirstName:  "Aziz",
			LastName:   "Karimov",
			Phone:      "+998901234567",
		}

		courier, err := m.Complete(context.Background(), sess, "Samarqand")
		require.NoError(t, err)
		require.EqualValues(t, 99, courier.ID)
		require.Equal(t, domain.RegionSamarkand, got.Region)
		require.Equal(t, domain.CourierActive, got.Status)
		require.Equal(t, register.StateNone, sess.State)
	})

	t.Run("unknown region is invalid", func(t *testing.T) {
		t.Parallel()
		m := register.NewMachine(&stubTokens{}, nil)
		sess := &register.Session{State: register.StateRegion, TokenID: 7}
		_, err := m.Complete(context.Background(), sess, "Atlantis")
		require.ErrorIs(t, err, apperr.Invalid)
		require.Equal(t, register.StateRegion, sess.State)
	})

	t.Run("stale token conflicts", func(t *testing.T) {
		t.Parallel()
		tokens := &stubTokens{consumeFn: func(context.Context, int64, *domain.Courier) (int64, error) {
			return 0, apperr.Conflict
		}}
		m := register.NewMachine(tokens, nil)
		sess := &register.Session{State: register.StateRegion, TokenID: 7}
		_, err := m.Complete(context.Background(), sess, "Samarqand")
		require.ErrorIs(t, err, apperr.Conflict)
	})
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in          string
		fromContact bool
		want        string
		ok          bool
	}{
		{"+998901234567", false, "+998901234567", true},
		{"998901234567", false, "+998901234567", true},
		{"901234567", false, "", false},
		{"998901234567", true, "+998901234567", true},
		{"+998901234567", true, "+998901234567", true},
		{"", false, "", false},
		{"+998 90 123 45 67", false, "", false},
		{"abc", false, "", false},
	}
	for _, tc := range cases {
		got, ok := register.NormalizePhone(tc.in, tc.fromContact)
		require.Equal(t, tc.ok, ok, "input %q contact=%v", tc.in, tc.fromContact)
		require.Equal(t, tc.want, got, "input %q contact=%v", tc.in, tc.fromContact)
	}
}
