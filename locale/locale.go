// Package locale holds the prompt localization table. The table is
// loaded once at startup and is read-only afterwards; a missing entry
// for any declared language is a startup error, never a call-time one.
package locale

import (
	"fmt"
	"os"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"github.com/Reverse-Call-Center/railway-ivr/types"
)

// Table maps (language, prompt key) to a template string. Placeholders
// use {name} syntax and are filled from collected slot values.
type Table struct {
	languages []types.Language
	entries   map[types.Language]map[string]string
}

// Load reads the table from a YAML file shaped as
// language -> key -> template.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading locales file: %w", err)
	}
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error decoding locales YAML: %w", err)
	}
	entries := make(map[types.Language]map[string]string, len(raw))
	for lang, prompts := range raw {
		entries[types.Language(lang)] = prompts
	}
	return New(entries)
}

// New builds a table from in-memory entries and verifies every language
// carries every prompt key.
func New(entries map[types.Language]map[string]string) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("locales: no languages declared")
	}
	keys := make(map[string]bool)
	languages := make([]types.Language, 0, len(entries))
	for lang, prompts := range entries {
		languages = append(languages, lang)
		for key := range prompts {
			keys[key] = true
		}
	}
	sort.Slice(languages, func(i, j int) bool { return languages[i] < languages[j] })

	var missing []string
	for _, lang := range languages {
		for key := range keys {
			if v, ok := entries[lang][key]; !ok || v == "" {
				missing = append(missing, string(lang)+"/"+key)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("locales: missing entries: %s", strings.Join(missing, ", "))
	}
	return &Table{languages: languages, entries: entries}, nil
}

// Prompt renders the template for (lang, key) with placeholder
// substitution. The completeness check in New guarantees the entry
// exists for every declared language.
func (t *Table) Prompt(lang types.Language, key string, vars map[string]string) string {
	tmpl := t.entries[lang][key]
	if tmpl == "" {
		// Unknown language falls back to the first declared one rather
		// than returning a silent prompt.
		tmpl = t.entries[t.languages[0]][key]
	}
	for name, value := range vars {
		tmpl = strings.ReplaceAll(tmpl, "{"+name+"}", value)
	}
	return tmpl
}

// Has reports whether the key exists at all.
func (t *Table) Has(key string) bool {
	_, ok := t.entries[t.languages[0]][key]
	return ok
}

// Languages returns the declared languages in stable order.
func (t *Table) Languages() []types.Language {
	return t.languages
}
