package dialog

import (
	"strings"

	"github.com/Reverse-Call-Center/railway-ivr/intent"
	"github.com/Reverse-Call-Center/railway-ivr/types"
)

// Language selection is a fixed pre-menu step, not part of the intent
// catalog: digit keys follow the opening prompt, keywords cover callers
// who answer by voice in either Latin or native script.
var languageDigits = map[string]types.Language{
	"1": types.LangEnglish,
	"2": types.LangHindi,
	"3": types.LangMarathi,
}

var languageKeywords = map[string]types.Language{
	"english": types.LangEnglish,
	"hindi":   types.LangHindi,
	"हिंदी":   types.LangHindi,
	"हिन्दी":  types.LangHindi,
	"marathi": types.LangMarathi,
	"मराठी":   types.LangMarathi,
}

func matchLanguage(raw string, modality types.Modality) (types.Language, bool) {
	if modality == types.ModalityDTMF {
		lang, ok := languageDigits[strings.TrimSpace(raw)]
		return lang, ok
	}
	utterance := intent.Normalize(raw)
	for word, lang := range languageKeywords {
		if strings.Contains(utterance, word) {
			return lang, true
		}
	}
	return "", false
}
