package session

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/Reverse-Call-Center/railway-ivr/types"
)

// Snapshot is the externalized session form. Round-trip through
// Marshal/Unmarshal is exact: a session restored mid-flow continues
// identically to an uninterrupted one.
type Snapshot struct {
	ID           string              `json:"session_id"`
	Language     types.Language      `json:"language"`
	State        types.SessionState  `json:"state"`
	Intent       string              `json:"intent,omitempty"`
	Slot         string              `json:"slot,omitempty"`
	Slots        []types.SlotValue   `json:"slots,omitempty"`
	RetryCount   int                 `json:"retry_count"`
	Cause        types.TerminalCause `json:"cause"`
	History      []types.TurnRecord  `json:"history,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	LastActivity time.Time           `json:"last_activity"`
}

func Capture(s *types.Session) Snapshot {
	return Snapshot{
		ID:           s.ID,
		Language:     s.Language,
		State:        s.State,
		Intent:       s.Intent,
		Slot:         s.Slot,
		Slots:        s.Slots,
		RetryCount:   s.RetryCount,
		Cause:        s.Cause,
		History:      s.History,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
}

func (sn Snapshot) Session() *types.Session {
	return &types.Session{
		ID:           sn.ID,
		Language:     sn.Language,
		State:        sn.State,
		Intent:       sn.Intent,
		Slot:         sn.Slot,
		Slots:        sn.Slots,
		RetryCount:   sn.RetryCount,
		Cause:        sn.Cause,
		History:      sn.History,
		CreatedAt:    sn.CreatedAt,
		LastActivity: sn.LastActivity,
	}
}

func Marshal(s *types.Session) ([]byte, error) {
	data, err := sonic.Marshal(Capture(s))
	if err != nil {
		return nil, fmt.Errorf("error encoding session %s: %w", s.ID, err)
	}
	return data, nil
}

func Unmarshal(data []byte) (*types.Session, error) {
	var sn Snapshot
	if err := sonic.Unmarshal(data, &sn); err != nil {
		return nil, fmt.Errorf("error decoding session snapshot: %w", err)
	}
	return sn.Session(), nil
}
