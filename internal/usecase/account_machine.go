package usecase

import (
	"fmt"
	"time"

	"telegram-premium-bot/internal/domain/model"
)

// MenuKind identifies a main-menu action.
type MenuKind string

const (
	MenuRedeem  MenuKind = "redeem"
	MenuBuy     MenuKind = "buy"
	MenuService MenuKind = "service"
	MenuDev     MenuKind = "dev"
)

// Event is one decoded inbound interaction: either a menu tap or plain text.
type Event struct {
	Menu MenuKind
	Text string
}

func MenuEvent(kind MenuKind) Event { return Event{Menu: kind} }
func TextEvent(text string) Event   { return Event{Text: text} }

// Effect is an outbound instruction for the dispatcher: a message to one
// target, optionally accompanied by the main menu keyboard.
type Effect struct {
	TargetID int64
	Text     string
	ShowMenu bool
}

// User-facing copy for every transition branch.
const (
	msgBanned          = "You are banned."
	msgRedeemPrompt    = "Enter details for your redeem request. Free users: one time. Premium: unlimited while your key is valid."
	msgKeyPrompt       = "Please enter your premium key to activate:"
	msgServiceList     = "Choose service:\n1. Prime Video\n2. Spotify\n3. Crunchyroll\n4. Turbo VPN\n5. Hotspot Shield VPN"
	msgRedeemExhausted = "You have already used your free redeem. Buy premium for unlimited."
	msgRedeemConfirmed = "Your redeem request has been sent to the admin. Thank you."
	msgInvalidKey      = "Invalid key."
	msgExpiredKey      = "This key has expired."
	msgMenuFallback    = "Use the menu below."
)

// transitionInput carries everything the transition needs beyond the account
// itself, so the decision logic stays a pure function.
type transitionInput struct {
	event      Event
	key        *model.ActivationKey // preloaded key when awaiting key entry; nil if unknown
	adminID    int64
	devContact string
	now        time.Time
}

// outcome is the full result of one transition: the updated account plus
// instructions for the orchestrator (what to persist, what to send).
type outcome struct {
	account      model.UserAccount
	effects      []Effect
	recordRedeem bool   // append a RedeemRequest from this event's text
	consumeKey   string // activation key code to destroy, "" if none
}

// transition computes the next account state and outbound effects for one
// inbound event. It never touches storage; the caller persists the returned
// account and executes the effects.
func transition(acct model.UserAccount, in transitionInput) outcome {
	out := outcome{account: acct}
	reply := func(text string) {
		out.effects = append(out.effects, Effect{TargetID: acct.TelegramID, Text: text})
	}

	// Banned users short-circuit before any other logic; pending action is
	// left untouched.
	if acct.Banned {
		reply(msgBanned)
		return out
	}

	if in.event.Menu != "" {
		switch in.event.Menu {
		case MenuRedeem:
			out.account.PendingAction = model.PendingRedeemDetails
			reply(msgRedeemPrompt)
		case MenuBuy:
			out.account.PendingAction = model.PendingKeyEntry
			reply(msgKeyPrompt)
		case MenuService:
			reply(msgServiceList)
		case MenuDev:
			reply(in.devContact)
		}
		return out
	}

	// Text input: behavior depends on the pending action, which is always
	// cleared by this interaction regardless of the branch taken.
	switch acct.PendingAction {
	case model.PendingRedeemDetails:
		out.account.PendingAction = model.PendingNone
		if acct.FreeRedeemUsed && !acct.IsPremiumActive(in.now) {
			reply(msgRedeemExhausted)
			return out
		}
		out.recordRedeem = true
		if !acct.FreeRedeemUsed && !acct.IsPremiumActive(in.now) {
			out.account.FreeRedeemUsed = true
		}
		out.effects = append(out.effects, Effect{
			TargetID: in.adminID,
			Text: fmt.Sprintf("New redeem request from %s (%d):\n\n%s",
				acct.DisplayHandle(), acct.TelegramID, in.event.Text),
		})
		reply(msgRedeemConfirmed)

	case model.PendingKeyEntry:
		out.account.PendingAction = model.PendingNone
		switch {
		case in.key == nil:
			reply(msgInvalidKey)
		case in.key.Expired(in.now):
			// A key past its validity window never activates, even if the
			// purge worker has not removed it yet.
			reply(msgExpiredKey)
		default:
			until := in.key.ExpiresAt
			out.account.PremiumUntil = &until
			out.consumeKey = in.key.Code
			reply(fmt.Sprintf("Premium activated until %s.", until.Format(time.RFC1123)))
			out.effects = append(out.effects, Effect{
				TargetID: in.adminID,
				Text: fmt.Sprintf("User %s (%d) activated premium until %s with key %s",
					acct.DisplayHandle(), acct.TelegramID, until.Format(time.RFC1123), in.key.Code),
			})
		}

	default:
		out.effects = append(out.effects, Effect{
			TargetID: acct.TelegramID,
			Text:     msgMenuFallback,
			ShowMenu: true,
		})
	}
	return out
}
