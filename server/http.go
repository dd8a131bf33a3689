// Package server exposes the dialogue engine as a telephony provider
// webhook: the provider posts gathered speech or digits, the server
// answers with voice markup for the next prompt.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Reverse-Call-Center/railway-ivr/config"
	"github.com/Reverse-Call-Center/railway-ivr/dialog"
	"github.com/Reverse-Call-Center/railway-ivr/session"
	"github.com/Reverse-Call-Center/railway-ivr/types"
	"github.com/Reverse-Call-Center/railway-ivr/utils"
)

const (
	entryPath = "/ivr"
	turnPath  = "/ivr/turn"
)

type Server struct {
	engine   *dialog.Engine
	sessions *session.Manager
	config   *config.Config
	log      zerolog.Logger
}

func New(engine *dialog.Engine, sessions *session.Manager, cfg *config.Config, log zerolog.Logger) *Server {
	return &Server{engine: engine, sessions: sessions, config: cfg, log: log}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(entryPath, s.handleEntry)
	mux.HandleFunc(turnPath, s.handleTurn)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.ListenAddress, s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info().Str("addr", addr).Msg("webhook server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleEntry answers a new or redirected call with the prompt for the
// session's current state, without consuming a turn.
func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	callID := s.callID(r)
	var instr types.Instruction
	err := s.sessions.Do(r.Context(), callID, time.Now(), func(sess *types.Session) error {
		instr = s.engine.Render(r.Context(), sess)
		return nil
	})
	if err != nil {
		s.reject(w, callID, err)
		return
	}
	s.log.Info().Str("call_id", callID).Msg("call at entry prompt")
	writeTwiML(w, renderTwiML(instr, turnPath, entryPath))
}

// handleTurn applies one gathered input to the call's session.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	// A turn without a call id cannot belong to any session; minting one
	// here would burn a session slot per stray request.
	callID := r.PostFormValue("CallSid")
	if callID == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return
	}
	turn := types.TurnEvent{
		SessionID:  callID,
		Digits:     r.PostFormValue("Digits"),
		SpeechText: r.PostFormValue("SpeechResult"),
		Timestamp:  time.Now(),
	}

	var instr types.Instruction
	err := s.sessions.Do(r.Context(), callID, turn.Timestamp, func(sess *types.Session) error {
		instr = s.engine.HandleTurn(r.Context(), sess, turn)
		return nil
	})
	if err != nil {
		s.reject(w, callID, err)
		return
	}
	writeTwiML(w, renderTwiML(instr, turnPath, entryPath))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "ok %d\n", s.sessions.ActiveCount())
}

// callID uses the provider call id so every webhook for one call lands
// on the same session; generated ids cover direct testing of the entry.
func (s *Server) callID(r *http.Request) string {
	if sid := r.FormValue("CallSid"); sid != "" {
		return sid
	}
	return utils.GenerateCallID()
}

// reject still answers with a spoken prompt; a phone system never
// responds with a bare error.
func (s *Server) reject(w http.ResponseWriter, callID string, err error) {
	if errors.Is(err, session.ErrTooManySessions) {
		s.log.Warn().Str("call_id", callID).Msg("session cap reached, rejecting call")
	} else {
		s.log.Error().Err(err).Str("call_id", callID).Msg("turn failed, rejecting call")
	}
	writeTwiML(w, renderSayHangup(s.engine.Busy()))
}

func writeTwiML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "application/xml")
	fmt.Fprint(w, doc)
}
