package types

import (
	"time"
)

// Modality is the input channel a value arrived on.
type Modality string

const (
	ModalitySpeech Modality = "speech"
	ModalityDTMF   Modality = "dtmf"
	// ModalityAny is used in input descriptors for prompts that accept
	// either speech or keypad input, such as the main menu.
	ModalityAny Modality = "any"
)

// Language codes offered by the language selection prompt.
type Language string

const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
	LangMarathi Language = "mr"
)

type SessionState int

const (
	StateAwaitingLanguage SessionState = iota
	StateAwaitingIntent
	StateCollectingSlot
	StateConfirming
	StateTerminal
)

func (s SessionState) String() string {
	switch s {
	case StateAwaitingLanguage:
		return "awaiting_language"
	case StateAwaitingIntent:
		return "awaiting_intent"
	case StateCollectingSlot:
		return "collecting_slot"
	case StateConfirming:
		return "confirming"
	case StateTerminal:
		return "terminal"
	}
	return "unknown"
}

// TerminalCause records how a session reached StateTerminal, so the
// composer can pick the right closing prompt.
type TerminalCause int

const (
	CauseNone TerminalCause = iota
	CauseCompleted
	CauseRetryExhausted
	CauseDeclined
)

// TurnEvent is one inbound input event from the transport layer. Digits
// and SpeechText may both be present when the provider gathers both
// modalities at once; digits take precedence.
type TurnEvent struct {
	SessionID  string
	Digits     string
	SpeechText string
	Timestamp  time.Time
}

// Input returns the effective raw value and modality for this turn.
func (t TurnEvent) Input() (string, Modality) {
	if t.Digits != "" {
		return t.Digits, ModalityDTMF
	}
	return t.SpeechText, ModalitySpeech
}

// TurnRecord is a diagnostic log entry; it never drives control flow.
type TurnRecord struct {
	Raw      string    `json:"raw"`
	Modality Modality  `json:"modality"`
	At       time.Time `json:"at"`
}

// SlotValue is one collected, validated slot. Slots are kept as a slice
// so collection order is preserved.
type SlotValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NextInput describes the input shape the transport should gather next.
type NextInput struct {
	Modality       Modality
	DigitCount     int
	TimeoutSeconds int
}

// Instruction is the outbound half of a turn, consumed by the transport
// layer to build the actual voice prompt markup.
type Instruction struct {
	PromptText           string
	NextInput            NextInput
	Terminal             bool
	ShouldRedirectToRoot bool
}

// Session holds per-call dialogue state. A session is mutated exactly
// once per inbound turn and is not safe for concurrent turns; the
// transport must serialize turns per call.
type Session struct {
	ID           string
	Language     Language
	State        SessionState
	Intent       string
	Slot         string // active slot name while collecting
	Slots        []SlotValue
	RetryCount   int
	Cause        TerminalCause
	History      []TurnRecord
	CreatedAt    time.Time
	LastActivity time.Time
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		State:        StateAwaitingLanguage,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Transition moves the session to the next state and resets the
// per-state retry counter.
func (s *Session) Transition(next SessionState) {
	s.State = next
	s.RetryCount = 0
}

func (s *Session) PutSlot(name, value string) {
	s.Slots = append(s.Slots, SlotValue{Name: name, Value: value})
}

func (s *Session) SlotValue(name string) (string, bool) {
	for _, sv := range s.Slots {
		if sv.Name == name {
			return sv.Value, true
		}
	}
	return "", false
}

// SlotMap flattens collected slots for placeholder substitution and
// domain lookups.
func (s *Session) SlotMap() map[string]string {
	m := make(map[string]string, len(s.Slots))
	for _, sv := range s.Slots {
		m[sv.Name] = sv.Value
	}
	return m
}

func (s *Session) RecordTurn(raw string, modality Modality, at time.Time) {
	s.History = append(s.History, TurnRecord{Raw: raw, Modality: modality, At: at})
	s.LastActivity = at
}

func (s *Session) Terminal() bool {
	return s.State == StateTerminal
}

// Expired reports whether the session has been idle longer than the
// given timeout. Expiry itself is driven by the session manager.
func (s *Session) Expired(now time.Time, idle time.Duration) bool {
	return now.Sub(s.LastActivity) > idle
}
