package intent

import (
	"github.com/Reverse-Call-Center/railway-ivr/types"
)

// Slot and answer localization keys used by the built-in catalog.
const (
	SlotTrainNumber = "train_number"
	SlotPNR         = "pnr"
)

// Default returns the railway information line catalog. Declaration
// order matters for speech matching: more specific intents come first
// ("seat" before the broader "availability", the locate-my-train rules
// before the running status rules).
func Default() *Catalog {
	c, err := NewCatalog([]Definition{
		{
			Name:  "train_location",
			Rules: []Rule{{"where", "train"}, {"locate", "train"}, {"train", "location"}},
			Slots: []SlotSpec{
				{Name: SlotTrainNumber, Modality: types.ModalityDTMF, DigitLength: 5, PromptKey: "slot.train_number"},
			},
			AnswerKey: "answer.train_location",
		},
		{
			Name:      "seat_availability",
			Digit:     "7",
			Rules:     []Rule{{"seat"}},
			AnswerKey: "answer.seat_availability",
		},
		{
			Name:  "ticket_cancellation",
			Digit: "4",
			Rules: []Rule{{"cancel"}},
			Slots: []SlotSpec{
				{Name: SlotPNR, Modality: types.ModalityDTMF, DigitLength: 10, PromptKey: "slot.pnr"},
			},
			Confirm:   true,
			AnswerKey: "answer.ticket_cancellation",
		},
		{
			Name:  "pnr_status",
			Digit: "2",
			Rules: []Rule{{"pnr"}},
			Slots: []SlotSpec{
				{Name: SlotPNR, Modality: types.ModalityDTMF, DigitLength: 10, PromptKey: "slot.pnr"},
			},
			AnswerKey: "answer.pnr_status",
		},
		{
			Name:      "train_availability",
			Digit:     "1",
			Rules:     []Rule{{"availability"}, {"available", "train"}},
			AnswerKey: "answer.train_availability",
		},
		{
			Name:      "refund_status",
			Digit:     "5",
			Rules:     []Rule{{"refund"}},
			AnswerKey: "answer.refund_status",
		},
		{
			Name:      "train_running_status",
			Digit:     "6",
			Rules:     []Rule{{"running"}, {"status", "train"}},
			AnswerKey: "answer.train_running_status",
		},
		{
			Name:      "station_enquiry",
			Digit:     "8",
			Rules:     []Rule{{"station"}},
			AnswerKey: "answer.station_enquiry",
		},
		{
			Name:      "customer_agent",
			Digit:     "3",
			Rules:     []Rule{{"agent"}, {"customer", "care"}, {"representative"}},
			AnswerKey: "answer.customer_agent",
		},
		{
			Name:           "main_menu",
			Digit:          "9",
			Rules:          []Rule{{"main", "menu"}, {"repeat"}},
			RedirectToRoot: true,
		},
	})
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is
		// a programming error.
		panic(err)
	}
	return c
}
