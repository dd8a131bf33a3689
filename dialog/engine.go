package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Reverse-Call-Center/railway-ivr/intent"
	"github.com/Reverse-Call-Center/railway-ivr/types"
)

// Engine drives the dialogue state machine. It holds only read-only
// collaborators and is safe to share across concurrent sessions; each
// individual session must still see one turn at a time.
type Engine struct {
	catalog  *intent.Catalog
	composer *Composer
	retryMax int
	log      zerolog.Logger
}

// NewEngine wires the engine and verifies every prompt key the catalog
// and composer can ever ask for exists in the localization table, so a
// configuration problem surfaces at startup instead of mid-call.
func NewEngine(catalog *intent.Catalog, composer *Composer, retryMax int, log zerolog.Logger) (*Engine, error) {
	if retryMax < 1 {
		return nil, fmt.Errorf("retry max must be at least 1, got %d", retryMax)
	}
	for _, key := range requiredPromptKeys() {
		if !composer.Locales.Has(key) {
			return nil, fmt.Errorf("localization table missing prompt key %q", key)
		}
	}
	for _, def := range catalog.Definitions() {
		if def.AnswerKey != "" && !composer.Locales.Has(def.AnswerKey) {
			return nil, fmt.Errorf("intent %q: localization table missing answer key %q", def.Name, def.AnswerKey)
		}
		for _, slot := range def.Slots {
			if !composer.Locales.Has(slot.PromptKey) {
				return nil, fmt.Errorf("intent %q: localization table missing slot prompt key %q", def.Name, slot.PromptKey)
			}
		}
	}
	return &Engine{catalog: catalog, composer: composer, retryMax: retryMax, log: log}, nil
}

// Busy is the prompt for calls rejected before a session exists.
func (e *Engine) Busy() string {
	return e.composer.Busy()
}

// Render composes the instruction for the session's current state
// without consuming a turn. Used for the call entry prompt and for
// transport-level redirects.
func (e *Engine) Render(ctx context.Context, sess *types.Session) types.Instruction {
	return e.composer.Render(ctx, sess)
}

// HandleTurn applies one inbound turn to the session and returns the
// next instruction. The session is mutated exactly once; every
// (state, input) pair has a defined next state, and every state either
// advances on valid input or exhausts the finite retry counter, so all
// sessions terminate.
func (e *Engine) HandleTurn(ctx context.Context, sess *types.Session, turn types.TurnEvent) types.Instruction {
	if sess.Terminal() {
		return e.composer.Render(ctx, sess)
	}

	raw, modality := turn.Input()
	sess.RecordTurn(raw, modality, turn.Timestamp)

	redirect := false
	switch sess.State {
	case types.StateAwaitingLanguage:
		e.handleLanguage(sess, raw, modality)
	case types.StateAwaitingIntent:
		redirect = e.handleIntent(sess, raw, modality)
	case types.StateCollectingSlot:
		e.handleSlot(sess, raw)
	case types.StateConfirming:
		e.handleConfirm(sess, raw, modality)
	}

	instr := e.composer.Render(ctx, sess)
	if redirect {
		// The transport reroutes to the root prompt, which re-renders
		// the menu; only the announcement is spoken here.
		instr.PromptText = e.composer.Locales.Prompt(sess.Language, keyRedirectMain, nil)
		instr.ShouldRedirectToRoot = true
	}
	e.log.Debug().Str("call_id", sess.ID).Stringer("state", sess.State).
		Str("intent", sess.Intent).Int("retries", sess.RetryCount).Msg("turn handled")
	return instr
}

func (e *Engine) handleLanguage(sess *types.Session, raw string, modality types.Modality) {
	lang, ok := matchLanguage(raw, modality)
	if !ok {
		e.retry(sess)
		return
	}
	sess.Language = lang
	sess.Transition(types.StateAwaitingIntent)
}

// handleIntent returns true when the turn asked for the main menu again.
func (e *Engine) handleIntent(sess *types.Session, raw string, modality types.Modality) bool {
	def, ok := e.catalog.Classify(raw, modality)
	if !ok {
		// Unknown classification drives a clarification re-prompt.
		e.retry(sess)
		return false
	}
	if def.RedirectToRoot {
		sess.Transition(types.StateAwaitingIntent)
		return true
	}
	sess.Intent = def.Name
	if len(def.Slots) == 0 {
		if def.Confirm {
			sess.Transition(types.StateConfirming)
			return false
		}
		sess.Cause = types.CauseCompleted
		sess.Transition(types.StateTerminal)
		return false
	}
	sess.Slot = def.Slots[0].Name
	sess.Transition(types.StateCollectingSlot)
	return false
}

func (e *Engine) handleSlot(sess *types.Session, raw string) {
	def, ok := e.catalog.Get(sess.Intent)
	if !ok {
		e.log.Error().Str("call_id", sess.ID).Str("intent", sess.Intent).Msg("active intent missing from catalog")
		sess.Cause = types.CauseRetryExhausted
		sess.Transition(types.StateTerminal)
		return
	}
	idx := slotIndex(def, sess.Slot)
	if idx < 0 {
		e.log.Error().Str("call_id", sess.ID).Str("slot", sess.Slot).Msg("active slot missing from schema")
		sess.Cause = types.CauseRetryExhausted
		sess.Transition(types.StateTerminal)
		return
	}
	spec := def.Slots[idx]

	value, err := spec.Check(raw)
	if err != nil {
		e.log.Debug().Str("call_id", sess.ID).Str("slot", spec.Name).Err(err).Msg("slot validation failed")
		e.retry(sess)
		return
	}
	sess.PutSlot(spec.Name, value)

	if idx+1 < len(def.Slots) {
		sess.Slot = def.Slots[idx+1].Name
		sess.Transition(types.StateCollectingSlot)
		return
	}
	sess.Slot = ""
	if def.Confirm {
		sess.Transition(types.StateConfirming)
		return
	}
	sess.Cause = types.CauseCompleted
	sess.Transition(types.StateTerminal)
}

func (e *Engine) handleConfirm(sess *types.Session, raw string, modality types.Modality) {
	switch confirmAnswer(raw, modality) {
	case confirmYes:
		sess.Cause = types.CauseCompleted
		sess.Transition(types.StateTerminal)
	case confirmNo:
		sess.Cause = types.CauseDeclined
		sess.Transition(types.StateTerminal)
	default:
		e.retry(sess)
	}
}

// retry bumps the per-state counter and terminates the session with the
// fallback once the bound is hit. The bound guarantees liveness: no
// sequence of invalid inputs can loop forever.
func (e *Engine) retry(sess *types.Session) {
	sess.RetryCount++
	if sess.RetryCount >= e.retryMax {
		sess.Cause = types.CauseRetryExhausted
		sess.Transition(types.StateTerminal)
	}
}

type confirmResult int

const (
	confirmUnknown confirmResult = iota
	confirmYes
	confirmNo
)

var confirmWords = map[string]confirmResult{
	"yes": confirmYes, "confirm": confirmYes, "haan": confirmYes, "हां": confirmYes, "हो": confirmYes,
	"no": confirmNo, "nahi": confirmNo, "नहीं": confirmNo, "नाही": confirmNo, "nako": confirmNo,
}

func confirmAnswer(raw string, modality types.Modality) confirmResult {
	if modality == types.ModalityDTMF {
		switch strings.TrimSpace(raw) {
		case "1":
			return confirmYes
		case "2":
			return confirmNo
		}
		return confirmUnknown
	}
	utterance := intent.Normalize(raw)
	for _, word := range strings.Fields(utterance) {
		if r, ok := confirmWords[word]; ok {
			return r
		}
	}
	return confirmUnknown
}

func slotIndex(def *intent.Definition, name string) int {
	for i, spec := range def.Slots {
		if spec.Name == name {
			return i
		}
	}
	return -1
}

// CatalogAnswers maps each intent to its canned answer key, for the
// static lookup.
func CatalogAnswers(c *intent.Catalog) map[string]string {
	answers := make(map[string]string)
	for _, def := range c.Definitions() {
		if def.AnswerKey != "" {
			answers[def.Name] = def.AnswerKey
		}
	}
	return answers
}
