// Package register drives the four-step courier onboarding dialog gated by
// a one-time token. Validation of the token is deliberately re-checked at
// the very end of the flow, atomically with courier creation, so an expired
// or stolen token can never mint a courier.
package register

import (
	"context"
	"strings"
	"time"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/logx"
)

// State is the current onboarding step of one conversation.
type State string

// Onboarding steps, in order. StateNone means no registration in progress.
const (
	StateNone      State = ""
	StateFirstName State = "awaiting_first_name"
	StateLastName  State = "awaiting_last_name"
	StatePhone     State = "awaiting_phone"
	StateRegion    State = "awaiting_region"
)

// Session carries the data collected so far for one registering user.
type Session struct {
	State            State
	TokenID          int64
	TelegramID       int64
	TelegramUsername string
	FirstName        string
	LastName         string
	Phone            string
}

type tokenRepository interface {
	GetUnused(ctx context.Context, token string) (*domain.RegistrationToken, error)
	Consume(ctx context.Context, tokenID int64, c *domain.Courier) (int64, error)
}

// Machine validates step inputs and completes the flow against the token store.
type Machine struct {
	tokens tokenRepository
	logger logx.Logger
	now    func() time.Time
}

// NewMachine creates a registration Machine.
func NewMachine(tokens tokenRepository, logger logx.Logger) *Machine {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Machine{
		tokens: tokens,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Begin opens a session for a token string. Unknown or already consumed
// tokens yield apperr.NotFound; a known token past its validity window
// yields apperr.Conflict.
func (m *Machine) Begin(ctx context.Context, tokenStr string, telegramID int64, username string) (*Session, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, apperr.Invalid
	}

	token, err := m.tokens.GetUnused(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, apperr.NotFound
	}
	if !token.ValidAt(m.now()) {
		return nil, apperr.Conflict
	}

	return &Session{
		State:            StateFirstName,
		TokenID:          token.ID,
		TelegramID:       telegramID,
		TelegramUsername: username,
	}, nil
}

// SubmitFirstName accepts the first name input. On validation failure the
// session state is unchanged and the user is re-prompted.
func (m *Machine) SubmitFirstName(s *Session, text string) error {
	name := strings.TrimSpace(text)
	if len([]rune(name)) < 2 {
		return apperr.Invalid
	}
	s.FirstName = name
	s.State = StateLastName
	return nil
}

// SubmitLastName accepts the last name input.
func (m *Machine) SubmitLastName(s *Session, text string) error {
	name := strings.TrimSpace(text)
	if len([]rune(name)) < 2 {
		return apperr.Invalid
	}
	s.LastName = name
	s.State = StatePhone
	return nil
}

// SubmitPhone accepts either a shared-contact payload or typed digits.
// Typed input must start with "+" or the bare country code 998.
func (m *Machine) SubmitPhone(s *Session, text string, fromContact bool) error {
	phone, ok := NormalizePhone(text, fromContact)
	if !ok {
		return apperr.Invalid
	}
	s.Phone = phone
	s.State = StateRegion
	return nil
}

// Complete accepts the region selection and finishes the flow: the token is
// re-validated and consumed atomically with courier creation. A token that
// went stale mid-dialog yields apperr.Conflict and no courier.
func (m *Machine) Complete(ctx context.Context, s *Session, regionName string) (*domain.Courier, error) {
	code, ok := domain.RegionByName(strings.TrimSpace(regionName))
	if !ok {
		return nil, apperr.Invalid
	}

	courier := &domain.Courier{
		FirstName:        s.FirstName,
		LastName:         s.LastName,
		Phone:            s.Phone,
		TelegramID:       s.TelegramID,
		TelegramUsername: s.TelegramUsername,
		Region:           code,
		Status:           domain.CourierActive,
	}

	id, err := m.tokens.Consume(ctx, s.TokenID, courier)
	if err != nil {
		return nil, err
	}
	courier.ID = id
	s.State = StateNone

	m.logger.Info("courier registered",
		logx.String("event", "courier_registered"),
		logx.Int64("courier_id", id),
		logx.String("region", string(code)),
	)
	return courier, nil
}

// NormalizePhone brings a phone input to canonical +<countrycode><digits> form.
func NormalizePhone(text string, fromContact bool) (string, bool) {
	phone := strings.TrimSpace(text)
	if phone == "" {
		return "", false
	}
	if fromContact {
		// contact payloads may omit the leading plus
		if !strings.HasPrefix(phone, "+") {
			phone = "+" + phone
		}
	} else if !strings.HasPrefix(phone, "+") {
		if !strings.HasPrefix(phone, "998") {
			return "", false
		}
		phone = "+" + phone
	}
	if !domain.ValidatePhone(phone) {
		return "", false
	}
	return phone, true
}
