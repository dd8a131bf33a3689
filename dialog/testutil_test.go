package dialog

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Reverse-Call-Center/railway-ivr/intent"
	"github.com/Reverse-Call-Center/railway-ivr/locale"
	"github.com/Reverse-Call-Center/railway-ivr/types"
)

func testLocales(t *testing.T) *locale.Table {
	t.Helper()
	en := map[string]string{
		"prompt.language.select":      "Select language.",
		"prompt.language.invalid":     "Bad language choice.",
		"prompt.menu.welcome":         "Main menu.",
		"prompt.intent.clarify":       "Did not understand.",
		"prompt.slot.invalid":         "Invalid entry.",
		"prompt.confirm":              "Press 1 to confirm, 2 to abort.",
		"prompt.confirm.declined":     "Not cancelled.",
		"prompt.fallback":             "Unable to process.",
		"prompt.redirect.main":        "Returning to the main menu.",
		"prompt.lookup.failed":        "Information unavailable.",
		"prompt.busy":                 "All lines busy.",
		"slot.train_number":           "Enter train number.",
		"slot.pnr":                    "Enter PNR.",
		"answer.train_availability":   "Availability answer.",
		"answer.pnr_status":           "PNR {pnr} is confirmed.",
		"answer.customer_agent":       "Connecting to agent.",
		"answer.ticket_cancellation":  "Ticket for PNR {pnr} cancelled.",
		"answer.refund_status":        "Refund answer.",
		"answer.train_running_status": "Running status answer.",
		"answer.seat_availability":    "Seat answer.",
		"answer.station_enquiry":      "Station answer.",
		"answer.train_location":       "Train {train_number} is at Pune Junction.",
	}
	hi := make(map[string]string, len(en))
	for k, v := range en {
		hi[k] = "hi " + v
	}
	table, err := locale.New(map[types.Language]map[string]string{
		types.LangEnglish: en,
		types.LangHindi:   hi,
	})
	require.NoError(t, err)
	return table
}

func newTestComposer(t *testing.T, lookup DomainLookup) *Composer {
	t.Helper()
	locales := testLocales(t)
	catalog := intent.Default()
	if lookup == nil {
		lookup = NewStaticLookup(locales, CatalogAnswers(catalog))
	}
	return &Composer{
		Locales:         locales,
		Catalog:         catalog,
		Lookup:          lookup,
		LookupTimeout:   time.Second,
		GatherTimeout:   5,
		DefaultLanguage: types.LangEnglish,
		Log:             zerolog.Nop(),
	}
}

func newTestEngine(t *testing.T, retryMax int) *Engine {
	t.Helper()
	composer := newTestComposer(t, nil)
	engine, err := NewEngine(composer.Catalog, composer, retryMax, zerolog.Nop())
	require.NoError(t, err)
	return engine
}

func speak(id, text string) types.TurnEvent {
	return types.TurnEvent{SessionID: id, SpeechText: text, Timestamp: time.Now()}
}

func press(id, digits string) types.TurnEvent {
	return types.TurnEvent{SessionID: id, Digits: digits, Timestamp: time.Now()}
}
