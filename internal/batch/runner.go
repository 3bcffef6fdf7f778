package batch

import (
	"context"
	"log"
	"sync"

	"github.com/Broconuts/TransSpell/internal/corrector"
)

// Processor annotates a single sentence. *corrector.Pipeline satisfies it.
type Processor interface {
	Process(ctx context.Context, s corrector.Sentence) (corrector.Result, error)
}

// Outcome is the result of one input sentence.
type Outcome struct {
	Index  int
	Tokens []string
	Result corrector.Result
	Err    error
}

// Runner fans sentences out over a WorkerPool. Outcomes come back in input
// order regardless of which worker finished first.
type Runner struct {
	Processor Processor
	Workers   int
	Logger    *log.Logger
}

// NewRunner returns a Runner with the given worker count.
func NewRunner(p Processor, workers int) *Runner {
	return &Runner{Processor: p, Workers: workers}
}

// Run processes every sentence. A failing sentence records its error in its
// Outcome and does not stop the others. The returned error is non-nil only
// when ctx ends before every sentence ran; sentences that never ran carry
// ctx.Err().
func (r *Runner) Run(ctx context.Context, sentences [][]string) ([]Outcome, error) {
	out := make([]Outcome, len(sentences))
	if len(sentences) == 0 {
		return out, nil
	}
	ran := make([]bool, len(sentences))
	var mu sync.Mutex

	pool := NewWorkerPool(r.Workers, len(sentences))
	pool.Start(ctx)

	for i, toks := range sentences {
		i, toks := i, toks
		out[i] = Outcome{Index: i, Tokens: toks}
		err := pool.SubmitCtx(ctx, func(ctx context.Context) {
			if ctx.Err() != nil {
				return
			}
			res, err := r.process(ctx, toks)
			if err != nil {
				r.logf("sentence %d: %v", i, err)
			}
			mu.Lock()
			out[i].Result = res
			out[i].Err = err
			ran[i] = true
			mu.Unlock()
		})
		if err != nil {
			break
		}
	}
	pool.Close()

	if err := ctx.Err(); err != nil {
		for i := range out {
			out[i].Index = i
			out[i].Tokens = sentences[i]
			if !ran[i] {
				out[i].Err = err
			}
		}
		return out, err
	}
	return out, nil
}

// RunText splits text into sentences and runs them.
func (r *Runner) RunText(ctx context.Context, text string) ([]Outcome, error) {
	var sentences [][]string
	for _, s := range corrector.SplitSentences(text) {
		sentences = append(sentences, corrector.Tokenize(s))
	}
	return r.Run(ctx, sentences)
}

func (r *Runner) process(ctx context.Context, toks []string) (corrector.Result, error) {
	s, err := corrector.NewSentence(toks)
	if err != nil {
		return corrector.Result{}, err
	}
	return r.Processor.Process(ctx, s)
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}
