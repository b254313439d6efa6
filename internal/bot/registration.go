package bot

import (
	"context"
	"errors"
	"strings"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/gateway/telegram"
	"kuryer-manager/internal/logx"
	"kuryer-manager/internal/service/register"
)

// handleStart drives the /start entry: a known courier gets the menu,
// an unknown user with a valid token enters the registration dialog.
func (r *Router) handleStart(ctx context.Context, msg *telegram.Message, text string) error {
	chatID := msg.Chat.ID

	courier, err := r.couriers.GetByTelegramID(ctx, msg.From.ID)
	if err != nil {
		r.logger.Error("start: courier lookup failed", logx.Any("err", err))
		return r.send(ctx, chatID, textGenericError, nil)
	}
	if courier != nil {
		r.sessions.Clear(chatID)
		if courier.Status != domain.CourierActive {
			return r.send(ctx, chatID, inactiveCourierText(courier), nil)
		}
		return r.send(ctx, chatID, greetingText(courier), MainMenuKeyboard())
	}

	var token string
	if fields := strings.Fields(text); len(fields) > 1 {
		token = fields[1]
	}
	if token == "" {
		return r.send(ctx, chatID, textTokenRequired, nil)
	}

	sess, err := r.registrar.Begin(ctx, token, msg.From.ID, msg.From.Username)
	switch {
	case err == nil:
		r.sessions.Put(chatID, sess)
		return r.send(ctx, chatID, textTokenAccepted, RemoveKeyboard())
	case errors.Is(err, apperr.NotFound):
		return r.send(ctx, chatID, textTokenUnknown, nil)
	case errors.Is(err, apperr.Conflict):
		return r.send(ctx, chatID, textTokenExpired, nil)
	case errors.Is(err, apperr.Invalid):
		return r.send(ctx, chatID, textTokenRequired, nil)
	default:
		r.logger.Error("start: token check failed", logx.Any("err", err))
		return r.send(ctx, chatID, textGenericError, nil)
	}
}

func (r *Router) handleCancel(ctx context.Context, chatID int64) error {
	if !r.sessions.Clear(chatID) {
		return r.send(ctx, chatID, textNothingToCancel, nil)
	}
	return r.send(ctx, chatID, textCancelled, RemoveKeyboard())
}

// handleRegistrationStep advances the onboarding dialog one input at a time.
// Validation failure re-prompts and leaves the state unchanged.
func (r *Router) handleRegistrationStep(ctx context.Context, msg *telegram.Message, sess *register.Session) error {
	chatID := msg.Chat.ID

	switch sess.State {
	case register.StateFirstName:
		if err := r.registrar.SubmitFirstName(sess, msg.Text); err != nil {
			return r.send(ctx, chatID, textNameTooShort, nil)
		}
		return r.send(ctx, chatID, textAskLastName, nil)

	case register.StateLastName:
		if err := r.registrar.SubmitLastName(sess, msg.Text); err != nil {
			return r.send(ctx, chatID, textLastTooShort, nil)
		}
		return r.send(ctx, chatID, textAskPhone, PhoneKeyboard())

	case register.StatePhone:
		input, fromContact := msg.Text, false
		if msg.Contact != nil {
			input, fromContact = msg.Contact.PhoneNumber, true
		}
		if err := r.registrar.SubmitPhone(sess, input, fromContact); err != nil {
			return r.send(ctx, chatID, textBadPhone, nil)
		}
		return r.send(ctx, chatID, textAskRegion, RegionKeyboard())

	case register.StateRegion:
		courier, err := r.registrar.Complete(ctx, sess, msg.Text)
		switch {
		case err == nil:
			r.sessions.Clear(chatID)
			return r.send(ctx, chatID, registeredText(courier), MainMenuKeyboard())
		case errors.Is(err, apperr.Invalid):
			return r.send(ctx, chatID, textBadRegion, nil)
		case errors.Is(err, apperr.Conflict):
			// token went stale mid-dialog: the whole flow resets
			r.sessions.Clear(chatID)
			return r.send(ctx, chatID, textTokenExpired+"\n\n"+textCancelled, RemoveKeyboard())
		default:
			r.logger.Error("registration failed", logx.Any("err", err))
			r.sessions.Clear(chatID)
			return r.send(ctx, chatID, textGenericError, RemoveKeyboard())
		}
	}
	return nil
}
