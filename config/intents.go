package config

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/Reverse-Call-Center/railway-ivr/intent"
	"github.com/Reverse-Call-Center/railway-ivr/types"
)

// IntentFile mirrors configs/intents.json. Deployments tune the menu by
// editing the file; the built-in catalog is used when the file is
// absent.
type IntentFile struct {
	Intents []IntentEntry `json:"intents"`
}

type IntentEntry struct {
	Name           string      `json:"name"`
	Digit          string      `json:"digit,omitempty"`
	Rules          [][]string  `json:"rules,omitempty"`
	Confirm        bool        `json:"confirm,omitempty"`
	RedirectToRoot bool        `json:"redirect_to_root,omitempty"`
	AnswerKey      string      `json:"answer_key,omitempty"`
	Slots          []SlotEntry `json:"slots,omitempty"`
}

type SlotEntry struct {
	Name        string `json:"name"`
	Modality    string `json:"modality"`
	DigitLength int    `json:"digit_length,omitempty"`
	PromptKey   string `json:"prompt_key"`
}

// LoadIntentCatalog loads the intent catalog from the JSON file.
// Malformed entries fail the load; the caller decides whether a missing
// file falls back to the built-in catalog.
func LoadIntentCatalog(path string) (*intent.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading intents file: %w", err)
	}
	var file IntentFile
	if err := sonic.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error decoding intents JSON: %w", err)
	}
	if len(file.Intents) == 0 {
		return nil, fmt.Errorf("intents file %s declares no intents", path)
	}

	defs := make([]intent.Definition, 0, len(file.Intents))
	for _, entry := range file.Intents {
		def := intent.Definition{
			Name:           entry.Name,
			Digit:          entry.Digit,
			Confirm:        entry.Confirm,
			RedirectToRoot: entry.RedirectToRoot,
			AnswerKey:      entry.AnswerKey,
		}
		for _, rule := range entry.Rules {
			def.Rules = append(def.Rules, intent.Rule(rule))
		}
		for _, slot := range entry.Slots {
			modality := types.Modality(slot.Modality)
			switch modality {
			case types.ModalitySpeech, types.ModalityDTMF:
			default:
				return nil, fmt.Errorf("intent %q: slot %q has unknown modality %q", entry.Name, slot.Name, slot.Modality)
			}
			def.Slots = append(def.Slots, intent.SlotSpec{
				Name:        slot.Name,
				Modality:    modality,
				DigitLength: slot.DigitLength,
				PromptKey:   slot.PromptKey,
			})
		}
		defs = append(defs, def)
	}
	return intent.NewCatalog(defs)
}
