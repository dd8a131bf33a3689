package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reverse-Call-Center/railway-ivr/types"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "where is my train", Normalize("  Where is   my TRAIN?! "))
	assert.Equal(t, "pnr status", Normalize("PNR-status."))
	assert.Equal(t, "", Normalize("?!..."))
}

func TestClassifyDTMF(t *testing.T) {
	c := Default()

	cases := map[string]string{
		"1": "train_availability",
		"2": "pnr_status",
		"3": "customer_agent",
		"4": "ticket_cancellation",
		"5": "refund_status",
		"6": "train_running_status",
		"7": "seat_availability",
		"8": "station_enquiry",
		"9": "main_menu",
	}
	for digit, want := range cases {
		def, ok := c.Classify(digit, types.ModalityDTMF)
		require.True(t, ok, "digit %s", digit)
		assert.Equal(t, want, def.Name, "digit %s", digit)
	}

	_, ok := c.Classify("0", types.ModalityDTMF)
	assert.False(t, ok)
}

func TestClassifySpeech(t *testing.T) {
	c := Default()

	cases := []struct {
		utterance string
		want      string
	}{
		{"Where is my train?", "train_location"},
		{"I want to locate my train", "train_location"},
		{"check PNR status please", "pnr_status"},
		{"cancel my ticket", "ticket_cancellation"},
		{"is a seat available", "seat_availability"},
		{"train availability", "train_availability"},
		{"refund please", "refund_status"},
		{"is the train running late", "train_running_status"},
		{"station enquiry", "station_enquiry"},
		{"talk to an agent", "customer_agent"},
		{"repeat the options", "main_menu"},
	}
	for _, tc := range cases {
		def, ok := c.Classify(tc.utterance, types.ModalitySpeech)
		require.True(t, ok, "utterance %q", tc.utterance)
		assert.Equal(t, tc.want, def.Name, "utterance %q", tc.utterance)
	}

	_, ok := c.Classify("what is the weather today", types.ModalitySpeech)
	assert.False(t, ok, "off-topic utterance must be Unknown")
}

// Declaration order is the disambiguation mechanism: when two intents
// both match, the earlier one is authoritative, deterministically.
func TestClassifyOrderSensitive(t *testing.T) {
	c, err := NewCatalog([]Definition{
		{Name: "seat", Rules: []Rule{{"seat"}}, AnswerKey: "answer.seat"},
		{Name: "broad", Rules: []Rule{{"availability"}}, AnswerKey: "answer.broad"},
	})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		def, ok := c.Classify("seat availability", types.ModalitySpeech)
		require.True(t, ok)
		assert.Equal(t, "seat", def.Name)
	}

	// The same utterance against the reversed declaration picks the
	// other intent.
	reversed, err := NewCatalog([]Definition{
		{Name: "broad", Rules: []Rule{{"availability"}}, AnswerKey: "answer.broad"},
		{Name: "seat", Rules: []Rule{{"seat"}}, AnswerKey: "answer.seat"},
	})
	require.NoError(t, err)
	def, ok := reversed.Classify("seat availability", types.ModalitySpeech)
	require.True(t, ok)
	assert.Equal(t, "broad", def.Name)
}

func TestSlotSpecCheck(t *testing.T) {
	trainNumber := SlotSpec{Name: "train_number", Modality: types.ModalityDTMF, DigitLength: 5}
	pnr := SlotSpec{Name: "pnr", Modality: types.ModalityDTMF, DigitLength: 10}
	speech := SlotSpec{Name: "station", Modality: types.ModalitySpeech}

	v, err := trainNumber.Check("00000")
	require.NoError(t, err)
	assert.Equal(t, "00000", v)

	v, err = trainNumber.Check(" 12345 ")
	require.NoError(t, err)
	assert.Equal(t, "12345", v)

	_, err = trainNumber.Check("1234")
	assert.Error(t, err, "wrong length")
	_, err = trainNumber.Check("12a45")
	assert.Error(t, err, "non-numeric")

	_, err = pnr.Check("123")
	assert.Error(t, err, "four digits into a ten digit slot")
	v, err = pnr.Check("1234567890")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", v)

	_, err = speech.Check("   ")
	assert.Error(t, err, "speech slots reject empty values")
	v, err = speech.Check("pune junction")
	require.NoError(t, err)
	assert.Equal(t, "pune junction", v)
}

func TestNewCatalogValidation(t *testing.T) {
	cases := []struct {
		name string
		defs []Definition
	}{
		{"empty name", []Definition{{Name: "", Rules: []Rule{{"x"}}, AnswerKey: "a"}}},
		{"duplicate name", []Definition{
			{Name: "a", Rules: []Rule{{"x"}}, AnswerKey: "k"},
			{Name: "a", Rules: []Rule{{"y"}}, AnswerKey: "k"},
		}},
		{"duplicate digit", []Definition{
			{Name: "a", Digit: "1", AnswerKey: "k"},
			{Name: "b", Digit: "1", AnswerKey: "k"},
		}},
		{"multi-key digit", []Definition{{Name: "a", Digit: "12", AnswerKey: "k"}}},
		{"unreachable", []Definition{{Name: "a", AnswerKey: "k"}}},
		{"empty rule", []Definition{{Name: "a", Rules: []Rule{{}}, AnswerKey: "k"}}},
		{"missing answer key", []Definition{{Name: "a", Rules: []Rule{{"x"}}}}},
		{"dtmf slot without length", []Definition{{
			Name: "a", Rules: []Rule{{"x"}}, AnswerKey: "k",
			Slots: []SlotSpec{{Name: "s", Modality: types.ModalityDTMF, PromptKey: "p"}},
		}}},
		{"slot bad modality", []Definition{{
			Name: "a", Rules: []Rule{{"x"}}, AnswerKey: "k",
			Slots: []SlotSpec{{Name: "s", Modality: "video", PromptKey: "p"}},
		}}},
		{"slot missing prompt key", []Definition{{
			Name: "a", Rules: []Rule{{"x"}}, AnswerKey: "k",
			Slots: []SlotSpec{{Name: "s", Modality: types.ModalitySpeech}},
		}}},
		{"duplicate slot", []Definition{{
			Name: "a", Rules: []Rule{{"x"}}, AnswerKey: "k",
			Slots: []SlotSpec{
				{Name: "s", Modality: types.ModalitySpeech, PromptKey: "p"},
				{Name: "s", Modality: types.ModalitySpeech, PromptKey: "p"},
			},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog(tc.defs)
			assert.Error(t, err)
		})
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	assert.NotPanics(t, func() { Default() })
}
