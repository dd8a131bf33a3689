package intent

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Reverse-Call-Center/railway-ivr/types"
)

// Rule is one speech match rule: it fires when every listed substring is
// present in the normalized utterance.
type Rule []string

// SlotSpec declares one parameter an intent collects.
type SlotSpec struct {
	Name        string
	Modality    types.Modality
	DigitLength int    // required length for DTMF slots
	PromptKey   string // localization key for the collection prompt
	// Validate overrides the default validator for the modality. It
	// returns the normalized value or a reason the raw value is invalid.
	Validate func(raw string) (string, error)
}

// Check validates a raw value against the spec and returns the
// normalized value.
func (s SlotSpec) Check(raw string) (string, error) {
	if s.Validate != nil {
		return s.Validate(raw)
	}
	switch s.Modality {
	case types.ModalityDTMF:
		v := strings.TrimSpace(raw)
		if !isDigits(v) {
			return "", fmt.Errorf("slot %s: value is not numeric", s.Name)
		}
		if len(v) != s.DigitLength {
			return "", fmt.Errorf("slot %s: expected %d digits, got %d", s.Name, s.DigitLength, len(v))
		}
		return v, nil
	default:
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", fmt.Errorf("slot %s: empty value", s.Name)
		}
		return v, nil
	}
}

// Definition is one intent the classifier can resolve to.
type Definition struct {
	Name string
	// Digit is the main-menu key mapped to this intent, empty for
	// speech-only intents.
	Digit string
	// Rules are evaluated in declaration order across the whole catalog;
	// the first intent with a satisfied rule wins.
	Rules []Rule
	Slots []SlotSpec
	// Confirm inserts a confirmation step after the last slot.
	Confirm bool
	// RedirectToRoot marks the "hear the main menu again" entry.
	RedirectToRoot bool
	// AnswerKey is the localization key of the canned domain answer.
	AnswerKey string
}

// Catalog is the read-only intent and slot schema registry. It is built
// once at startup and safe for concurrent reads.
type Catalog struct {
	defs    []Definition
	byDigit map[string]*Definition
	byName  map[string]*Definition
}

func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{
		defs:    defs,
		byDigit: make(map[string]*Definition),
		byName:  make(map[string]*Definition),
	}
	for i := range c.defs {
		def := &c.defs[i]
		if def.Name == "" {
			return nil, fmt.Errorf("intent %d: empty name", i)
		}
		if _, dup := c.byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate intent %q", def.Name)
		}
		c.byName[def.Name] = def

		if def.Digit != "" {
			if len(def.Digit) != 1 || !isDigits(def.Digit) {
				return nil, fmt.Errorf("intent %q: digit must be a single key, got %q", def.Name, def.Digit)
			}
			if _, dup := c.byDigit[def.Digit]; dup {
				return nil, fmt.Errorf("intent %q: digit %s already mapped", def.Name, def.Digit)
			}
			c.byDigit[def.Digit] = def
		}
		if def.Digit == "" && len(def.Rules) == 0 {
			return nil, fmt.Errorf("intent %q: no digit and no match rules", def.Name)
		}
		for _, r := range def.Rules {
			if len(r) == 0 {
				return nil, fmt.Errorf("intent %q: empty match rule", def.Name)
			}
		}
		if !def.RedirectToRoot && def.AnswerKey == "" {
			return nil, fmt.Errorf("intent %q: missing answer key", def.Name)
		}
		seen := make(map[string]bool, len(def.Slots))
		for _, slot := range def.Slots {
			if slot.Name == "" {
				return nil, fmt.Errorf("intent %q: slot with empty name", def.Name)
			}
			if seen[slot.Name] {
				return nil, fmt.Errorf("intent %q: duplicate slot %q", def.Name, slot.Name)
			}
			seen[slot.Name] = true
			switch slot.Modality {
			case types.ModalityDTMF:
				if slot.DigitLength <= 0 {
					return nil, fmt.Errorf("intent %q: slot %q needs a digit length", def.Name, slot.Name)
				}
			case types.ModalitySpeech:
			default:
				return nil, fmt.Errorf("intent %q: slot %q has unknown modality %q", def.Name, slot.Name, slot.Modality)
			}
			if slot.PromptKey == "" {
				return nil, fmt.Errorf("intent %q: slot %q missing prompt key", def.Name, slot.Name)
			}
		}
	}
	return c, nil
}

// Classify resolves a raw input to an intent definition. DTMF input is
// an exact menu key lookup; speech input is matched against each
// intent's rules in declaration order, first match wins. A false return
// is the Unknown outcome, not an error.
func (c *Catalog) Classify(raw string, modality types.Modality) (*Definition, bool) {
	if modality == types.ModalityDTMF {
		def, ok := c.byDigit[strings.TrimSpace(raw)]
		return def, ok
	}
	utterance := Normalize(raw)
	if utterance == "" {
		return nil, false
	}
	for i := range c.defs {
		def := &c.defs[i]
		for _, rule := range def.Rules {
			if rule.matches(utterance) {
				return def, true
			}
		}
	}
	return nil, false
}

func (r Rule) matches(utterance string) bool {
	for _, sub := range r {
		if !strings.Contains(utterance, sub) {
			return false
		}
	}
	return true
}

// Get looks up an intent by name.
func (c *Catalog) Get(name string) (*Definition, bool) {
	def, ok := c.byName[name]
	return def, ok
}

func (c *Catalog) Definitions() []Definition {
	return c.defs
}

// Normalize lowercases an utterance, strips punctuation and collapses
// whitespace. No stemming: rules are plain substring predicates.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
