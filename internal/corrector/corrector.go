package corrector

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/Broconuts/TransSpell/internal/oracle"
	"github.com/Broconuts/TransSpell/internal/textnorm"
	"github.com/Broconuts/TransSpell/pkg/options"
)

// Pipeline annotates sentences token by token. The frequency table and
// lexicon are shared read-only; a Pipeline keeps no per-sentence state and
// may be used from several goroutines at once.
type Pipeline struct {
	opts        options.PipelineOptions
	normalize   textnorm.Normalizer
	insensitive InsensitiveDetector
	contextual  *ContextDetector
	engine      *Engine

	// Logger receives degraded-correction notices. nil means no logging.
	Logger *log.Logger
}

// NewPipeline wires the detectors and the correction engine.
func NewPipeline(freq Counter, lex Lexicon, o oracle.Oracle, opts ...options.Options) *Pipeline {
	cfg := options.Resolve(opts...)
	normalize := tableNormalizer(freq, lex)
	return &Pipeline{
		opts:      cfg,
		normalize: normalize,
		insensitive: InsensitiveDetector{
			MinTokenLength: cfg.MinTokenLength,
			MaxFrequency:   cfg.MaxFrequency,
			Frequencies:    freq,
			Lexicon:        lex,
			Normalize:      normalize,
		},
		contextual: &ContextDetector{Oracle: o, TopK: cfg.TopK, Timeout: cfg.OracleTimeout},
		engine:     &Engine{Oracle: o, TopK: cfg.TopK, Timeout: cfg.OracleTimeout},
	}
}

// Options returns the resolved configuration.
func (p *Pipeline) Options() options.PipelineOptions { return p.opts }

// Process annotates every token of s.
//
// Edge tokens get the context-insensitive verdict only and never a
// correction. Interior tokens run both detectors; the token is an error if
// either fires, reported as WordError when the context-sensitive detector
// fired and NonWordError otherwise. Flagged interior tokens are then sent
// to the correction engine.
//
// An oracle failure during detection fails the sentence with an
// *OracleError. A failure during correction only leaves that correction
// absent.
func (p *Pipeline) Process(ctx context.Context, s Sentence) (Result, error) {
	n := s.Len()
	if n == 0 {
		return Result{}, ErrEmptySentence
	}

	anns := make([]Annotation, n)
	var interior []int
	for i, tok := range s.tokens {
		v := p.insensitive.Detect(tok)
		anns[i] = Annotation{
			Position:    tok.Position,
			Surface:     tok.Surface,
			Role:        tok.Role,
			Verdict:     v,
			Insensitive: v,
			Contextual:  Unsupported,
		}
		if tok.Role == RoleInterior && !p.isStopword(tok.Surface) {
			interior = append(interior, i)
		}
	}

	detections := make([]Detection, n)
	err := p.each(ctx, interior, func(ctx context.Context, pos int) error {
		d, err := p.contextual.Detect(ctx, s, pos)
		if err != nil {
			return err
		}
		detections[pos] = d
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	var flagged []int
	for _, pos := range interior {
		a := &anns[pos]
		a.Contextual = detections[pos].Verdict
		a.Verdict = Merge(a.Insensitive, a.Contextual)
		if a.Verdict.IsError() {
			flagged = append(flagged, pos)
		}
	}
	// Stop words and other skipped interior tokens keep their
	// context-insensitive verdict; they can still be corrected.
	for i := range anns {
		a := &anns[i]
		if a.Role == RoleInterior && a.Contextual == Unsupported && a.Verdict.IsError() {
			flagged = append(flagged, i)
		}
	}
	sort.Ints(flagged)

	_ = p.each(ctx, flagged, func(ctx context.Context, pos int) error {
		if p.opts.ShareCandidates && detections[pos].Candidates != nil {
			anns[pos].Correction = SelectCorrection(s.At(pos).Surface, detections[pos].Candidates)
			return nil
		}
		c, err := p.engine.Correct(ctx, s, pos)
		if err != nil {
			p.logf("correction skipped: %v", err)
		}
		anns[pos].Correction = c
		return nil
	})

	return Result{Annotations: anns, Unsupported: !s.HasInterior()}, nil
}

// ProcessText tokenizes text as one sentence and processes it.
func (p *Pipeline) ProcessText(ctx context.Context, text string) (Result, error) {
	s, err := ParseSentence(text)
	if err != nil {
		return Result{}, err
	}
	return p.Process(ctx, s)
}

// each calls fn for every position, in increasing order when running
// sequentially. With Concurrency > 1 the calls overlap; fn must only write
// to state owned by its position. The error reported is the one of the
// lowest failing position, so the outcome does not depend on scheduling.
func (p *Pipeline) each(ctx context.Context, positions []int, fn func(ctx context.Context, pos int) error) error {
	if p.opts.Concurrency <= 1 || len(positions) < 2 {
		for _, pos := range positions {
			if err := fn(ctx, pos); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, len(positions))
	sem := make(chan struct{}, p.opts.Concurrency)
	var wg sync.WaitGroup
	for i, pos := range positions {
		wg.Add(1)
		sem <- struct{}{}
		go func(i, pos int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = fn(ctx, pos)
		}(i, pos)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// isStopword matches the exact surface or its normalized key, so a list of
// lowercase words also covers "The" and "the,".
func (p *Pipeline) isStopword(surface string) bool {
	if len(p.opts.Stopwords) == 0 {
		return false
	}
	return p.opts.Stopwords[surface] || p.opts.Stopwords[textnorm.Apply(p.normalize, surface)]
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}
