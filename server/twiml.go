package server

import (
	"fmt"
	"strings"

	"github.com/Reverse-Call-Center/railway-ivr/types"
)

// Voice markup never leaves this package: the engine speaks in
// instructions, the provider speaks TwiML.

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func gatherInput(m types.Modality) string {
	switch m {
	case types.ModalityDTMF:
		return "dtmf"
	case types.ModalitySpeech:
		return "speech"
	default:
		return "dtmf speech"
	}
}

// renderTwiML turns an instruction into the provider response document.
func renderTwiML(instr types.Instruction, turnURL, entryURL string) string {
	var b strings.Builder
	b.WriteString("<Response>")
	if instr.PromptText != "" {
		fmt.Fprintf(&b, `<Say voice="alice">%s</Say>`, xmlEscaper.Replace(instr.PromptText))
	}
	switch {
	case instr.Terminal:
		b.WriteString("<Hangup/>")
	case instr.ShouldRedirectToRoot:
		fmt.Fprintf(&b, "<Redirect>%s</Redirect>", entryURL)
	default:
		fmt.Fprintf(&b, `<Gather input="%s"`, gatherInput(instr.NextInput.Modality))
		if instr.NextInput.Modality != types.ModalitySpeech && instr.NextInput.DigitCount > 0 {
			fmt.Fprintf(&b, ` numDigits="%d"`, instr.NextInput.DigitCount)
		}
		fmt.Fprintf(&b, ` timeout="%d" action="%s" method="POST"/>`, instr.NextInput.TimeoutSeconds, turnURL)
	}
	b.WriteString("</Response>")
	return b.String()
}

// renderSayHangup is the fixed response for calls the engine never saw,
// such as the busy rejection.
func renderSayHangup(text string) string {
	return fmt.Sprintf(`<Response><Say voice="alice">%s</Say><Hangup/></Response>`, xmlEscaper.Replace(text))
}
