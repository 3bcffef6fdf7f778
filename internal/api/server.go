// Package api serves the correction pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/Broconuts/TransSpell/internal/batch"
	"github.com/Broconuts/TransSpell/internal/corrector"
	"github.com/Broconuts/TransSpell/internal/customdict"
	"github.com/Broconuts/TransSpell/internal/lexicon"
	"github.com/Broconuts/TransSpell/internal/oracle"
	"github.com/Broconuts/TransSpell/internal/textnorm"
	"github.com/Broconuts/TransSpell/pkg/options"
)

// Config holds everything the server needs to build a pipeline.
type Config struct {
	Frequencies corrector.Counter
	// Lexicon holds the static dialects; the custom dialect is added on
	// every reload.
	Lexicon   *lexicon.Index
	Oracle    oracle.Oracle
	Dict      *customdict.CustomDict
	Normalize textnorm.Normalizer
	Options   []options.Options
	Workers   int
	Logger    *log.Logger
}

// Server answers correction requests. The pipeline it uses is replaced
// wholesale whenever the custom dictionary changes, so in-flight requests
// keep the tables they started with.
type Server struct {
	cfg      Config
	pipeline atomic.Pointer[corrector.Pipeline]
	// reloads are serialised so a slow snapshot cannot overwrite a newer one.
	reloadMu chan struct{}
}

// NewServer builds the first pipeline from the current custom dictionary.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	s := &Server{cfg: cfg, reloadMu: make(chan struct{}, 1)}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Pipeline returns the pipeline currently in use.
func (s *Server) Pipeline() *corrector.Pipeline { return s.pipeline.Load() }

// Reload snapshots the custom dictionary and swaps in a new pipeline.
func (s *Server) Reload(ctx context.Context) error {
	select {
	case s.reloadMu <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.reloadMu }()

	lex := s.cfg.Lexicon
	if s.cfg.Dict != nil {
		custom, err := lexicon.FromCustomDict(ctx, s.cfg.Dict, s.cfg.Normalize)
		if err != nil {
			return err
		}
		lex = lex.With(custom)
	}
	p := corrector.NewPipeline(s.cfg.Frequencies, lex, s.cfg.Oracle, s.cfg.Options...)
	p.Logger = s.cfg.Logger
	s.pipeline.Store(p)
	return nil
}

// Handler returns the service routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/correct", s.handleCorrect)
	mux.HandleFunc("/api/v1/custom-word", s.handleCustomWord)
	mux.HandleFunc("/api/v1/custom-word/", s.handleRemoveCustomWord)
	return mux
}

type correctResponse struct {
	Original  string             `json:"original"`
	Corrected string             `json:"corrected"`
	Sentences []sentenceResponse `json:"sentences"`
	Error     string             `json:"error,omitempty"`
}

// sentenceResponse carries one sentence's annotations, or the error that
// stopped it. A failed sentence keeps its tokens unchanged in Corrected.
type sentenceResponse struct {
	corrector.Result
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	runner := batch.NewRunner(s.pipeline.Load(), s.cfg.Workers)
	outcomes, err := runner.RunText(r.Context(), req.Text)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	// Completed sentences are always returned. The status reflects the worst
	// failure: 503 when the oracle failed, 500 for anything else.
	status := http.StatusOK
	res := correctResponse{Original: req.Text, Sentences: make([]sentenceResponse, len(outcomes))}
	corrected := make([]string, len(outcomes))
	for i, o := range outcomes {
		if o.Err == nil {
			res.Sentences[i] = sentenceResponse{Result: o.Result}
			corrected[i] = o.Result.Text()
			continue
		}
		s.logf("correct: sentence %d: %v", i, o.Err)
		sr := sentenceResponse{Error: o.Err.Error()}
		var oe *corrector.OracleError
		if errors.As(o.Err, &oe) {
			sr.Retryable = oe.Retryable()
			if status != http.StatusInternalServerError {
				status = http.StatusServiceUnavailable
			}
		} else {
			status = http.StatusInternalServerError
		}
		if res.Error == "" {
			res.Error = o.Err.Error()
		}
		res.Sentences[i] = sr
		corrected[i] = strings.Join(o.Tokens, " ")
	}
	res.Corrected = strings.Join(corrected, " ")
	writeJSON(w, status, res)
}

func (s *Server) handleCustomWord(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Dict == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "custom dictionary disabled"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		words, err := s.cfg.Dict.All(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if words == nil {
			words = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{"words": words})
	case http.MethodPost:
		var req struct {
			Word string `json:"word"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Word) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
			return
		}
		if err := s.cfg.Dict.Add(r.Context(), req.Word); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if err := s.Reload(r.Context()); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleRemoveCustomWord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	if s.cfg.Dict == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "custom dictionary disabled"})
		return
	}
	word := strings.TrimPrefix(r.URL.Path, "/api/v1/custom-word/")
	if strings.TrimSpace(word) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "word is required"})
		return
	}
	if err := s.cfg.Dict.Remove(r.Context(), word); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.Reload(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Printf(format, args...)
	}
}
