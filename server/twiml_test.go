package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Reverse-Call-Center/railway-ivr/types"
)

func TestRenderTwiMLGather(t *testing.T) {
	instr := types.Instruction{
		PromptText: "Please enter the five digit train number.",
		NextInput:  types.NextInput{Modality: types.ModalityDTMF, DigitCount: 5, TimeoutSeconds: 5},
	}
	doc := renderTwiML(instr, "/ivr/turn", "/ivr")

	assert.Contains(t, doc, `<Say voice="alice">Please enter the five digit train number.</Say>`)
	assert.Contains(t, doc, `<Gather input="dtmf" numDigits="5" timeout="5" action="/ivr/turn" method="POST"/>`)
	assert.NotContains(t, doc, "<Hangup/>")
}

func TestRenderTwiMLMixedModality(t *testing.T) {
	instr := types.Instruction{
		PromptText: "Main menu.",
		NextInput:  types.NextInput{Modality: types.ModalityAny, DigitCount: 1, TimeoutSeconds: 5},
	}
	doc := renderTwiML(instr, "/ivr/turn", "/ivr")
	assert.Contains(t, doc, `input="dtmf speech"`)
	assert.Contains(t, doc, `numDigits="1"`)
}

func TestRenderTwiMLSpeechGatherOmitsNumDigits(t *testing.T) {
	instr := types.Instruction{
		PromptText: "Which station?",
		NextInput:  types.NextInput{Modality: types.ModalitySpeech, TimeoutSeconds: 5},
	}
	doc := renderTwiML(instr, "/ivr/turn", "/ivr")
	assert.Contains(t, doc, `input="speech"`)
	assert.NotContains(t, doc, "numDigits")
}

func TestRenderTwiMLTerminal(t *testing.T) {
	instr := types.Instruction{PromptText: "Goodbye.", Terminal: true}
	doc := renderTwiML(instr, "/ivr/turn", "/ivr")
	assert.Contains(t, doc, "<Hangup/>")
	assert.NotContains(t, doc, "<Gather")
}

func TestRenderTwiMLRedirect(t *testing.T) {
	instr := types.Instruction{PromptText: "Returning to the main menu.", ShouldRedirectToRoot: true}
	doc := renderTwiML(instr, "/ivr/turn", "/ivr")
	assert.Contains(t, doc, "<Redirect>/ivr</Redirect>")
	assert.NotContains(t, doc, "<Gather")
}

func TestRenderTwiMLEscapesPrompt(t *testing.T) {
	instr := types.Instruction{PromptText: `Trains & "fares" <today>`, Terminal: true}
	doc := renderTwiML(instr, "/ivr/turn", "/ivr")
	assert.Contains(t, doc, "Trains &amp; &quot;fares&quot; &lt;today&gt;")
}
