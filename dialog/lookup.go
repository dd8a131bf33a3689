package dialog

import (
	"context"
	"time"

	"github.com/Reverse-Call-Center/railway-ivr/locale"
	"github.com/Reverse-Call-Center/railway-ivr/types"
)

// DomainLookup resolves a completed intent plus its collected slots to
// the final spoken answer. Production deployments back this with real
// PNR and train status systems; the default implementation returns the
// canned answers the line has always used.
type DomainLookup interface {
	Lookup(ctx context.Context, lang types.Language, intent string, slots map[string]string) (string, error)
}

// StaticLookup serves localized canned answers from the prompt table,
// substituting collected slot values into placeholders.
type StaticLookup struct {
	locales *locale.Table
	answers map[string]string // intent name -> answer key
}

func NewStaticLookup(locales *locale.Table, answers map[string]string) *StaticLookup {
	return &StaticLookup{locales: locales, answers: answers}
}

func (s *StaticLookup) Lookup(_ context.Context, lang types.Language, intent string, slots map[string]string) (string, error) {
	key, ok := s.answers[intent]
	if !ok {
		return "", errNoAnswer(intent)
	}
	return s.locales.Prompt(lang, key, slots), nil
}

type errNoAnswer string

func (e errNoAnswer) Error() string { return "no canned answer for intent " + string(e) }

// lookupWithTimeout runs the lookup under a deadline and never blocks
// the turn on a slow backend: on timeout or failure the caller
// substitutes the localized apology.
func lookupWithTimeout(ctx context.Context, lk DomainLookup, timeout time.Duration,
	lang types.Language, intent string, slots map[string]string) (string, error) {

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := lk.Lookup(ctx, lang, intent, slots)
		ch <- result{text: text, err: err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
