package dialog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Reverse-Call-Center/railway-ivr/intent"
	"github.com/Reverse-Call-Center/railway-ivr/locale"
	"github.com/Reverse-Call-Center/railway-ivr/types"
)

// Prompt keys the engine needs beyond the per-slot and per-answer keys
// declared in the catalog.
const (
	keyLanguageSelect  = "prompt.language.select"
	keyLanguageInvalid = "prompt.language.invalid"
	keyMenuWelcome     = "prompt.menu.welcome"
	keyIntentClarify   = "prompt.intent.clarify"
	keySlotInvalid     = "prompt.slot.invalid"
	keyConfirm         = "prompt.confirm"
	keyConfirmDeclined = "prompt.confirm.declined"
	keyFallback        = "prompt.fallback"
	keyRedirectMain    = "prompt.redirect.main"
	keyLookupFailed    = "prompt.lookup.failed"
	keyBusy            = "prompt.busy"
)

func requiredPromptKeys() []string {
	return []string{
		keyLanguageSelect, keyLanguageInvalid, keyMenuWelcome,
		keyIntentClarify, keySlotInvalid, keyConfirm,
		keyConfirmDeclined, keyFallback, keyRedirectMain,
		keyLookupFailed, keyBusy,
	}
}

// Composer renders a session's current state into the next outbound
// instruction. It never mutates the session.
type Composer struct {
	Locales         *locale.Table
	Catalog         *intent.Catalog
	Lookup          DomainLookup
	LookupTimeout   time.Duration
	GatherTimeout   int
	DefaultLanguage types.Language
	Log             zerolog.Logger
}

// Busy is the answer for calls rejected before a session exists.
func (c *Composer) Busy() string {
	return c.Locales.Prompt(c.DefaultLanguage, keyBusy, nil)
}

// Render is a pure function of the session plus the read-only
// localization table and the domain lookup collaborator.
func (c *Composer) Render(ctx context.Context, sess *types.Session) types.Instruction {
	lang := sess.Language
	if lang == "" {
		lang = c.DefaultLanguage
	}

	switch sess.State {
	case types.StateAwaitingLanguage:
		text := c.Locales.Prompt(lang, keyLanguageSelect, nil)
		if sess.RetryCount > 0 {
			text = c.Locales.Prompt(lang, keyLanguageInvalid, nil) + " " + text
		}
		return types.Instruction{
			PromptText: text,
			NextInput:  types.NextInput{Modality: types.ModalityAny, DigitCount: 1, TimeoutSeconds: c.GatherTimeout},
		}

	case types.StateAwaitingIntent:
		text := c.Locales.Prompt(lang, keyMenuWelcome, nil)
		if sess.RetryCount > 0 {
			text = c.Locales.Prompt(lang, keyIntentClarify, nil) + " " + text
		}
		return types.Instruction{
			PromptText: text,
			NextInput:  types.NextInput{Modality: types.ModalityAny, DigitCount: 1, TimeoutSeconds: c.GatherTimeout},
		}

	case types.StateCollectingSlot:
		spec, ok := c.slotSpec(sess)
		if !ok {
			// Session out of step with the catalog; end the call with
			// the fallback rather than an unanswerable prompt.
			c.Log.Error().Str("call_id", sess.ID).Str("intent", sess.Intent).
				Str("slot", sess.Slot).Msg("no slot spec for session")
			return types.Instruction{
				PromptText:           c.Locales.Prompt(lang, keyFallback, nil),
				Terminal:             true,
				ShouldRedirectToRoot: true,
			}
		}
		text := c.Locales.Prompt(lang, spec.PromptKey, nil)
		if sess.RetryCount > 0 {
			text = c.Locales.Prompt(lang, keySlotInvalid, nil) + " " + text
		}
		return types.Instruction{
			PromptText: text,
			NextInput:  types.NextInput{Modality: spec.Modality, DigitCount: spec.DigitLength, TimeoutSeconds: c.GatherTimeout},
		}

	case types.StateConfirming:
		text := c.Locales.Prompt(lang, keyConfirm, nil)
		if sess.RetryCount > 0 {
			text = c.Locales.Prompt(lang, keyIntentClarify, nil) + " " + text
		}
		return types.Instruction{
			PromptText: text,
			NextInput:  types.NextInput{Modality: types.ModalityDTMF, DigitCount: 1, TimeoutSeconds: c.GatherTimeout},
		}

	default: // StateTerminal
		return c.renderTerminal(ctx, sess, lang)
	}
}

func (c *Composer) renderTerminal(ctx context.Context, sess *types.Session, lang types.Language) types.Instruction {
	switch sess.Cause {
	case types.CauseRetryExhausted:
		return types.Instruction{
			PromptText:           c.Locales.Prompt(lang, keyFallback, nil),
			Terminal:             true,
			ShouldRedirectToRoot: true,
		}
	case types.CauseDeclined:
		return types.Instruction{
			PromptText: c.Locales.Prompt(lang, keyConfirmDeclined, nil),
			Terminal:   true,
		}
	default:
		text, err := lookupWithTimeout(ctx, c.Lookup, c.LookupTimeout, lang, sess.Intent, sess.SlotMap())
		if err != nil {
			c.Log.Warn().Err(err).Str("call_id", sess.ID).Str("intent", sess.Intent).
				Msg("domain lookup failed, substituting apology")
			text = c.Locales.Prompt(lang, keyLookupFailed, nil)
		}
		return types.Instruction{PromptText: text, Terminal: true}
	}
}

func (c *Composer) slotSpec(sess *types.Session) (intent.SlotSpec, bool) {
	def, ok := c.Catalog.Get(sess.Intent)
	if !ok {
		return intent.SlotSpec{}, false
	}
	for _, spec := range def.Slots {
		if spec.Name == sess.Slot {
			return spec, true
		}
	}
	return intent.SlotSpec{}, false
}
