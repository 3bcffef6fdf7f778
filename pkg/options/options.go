package options

import "time"

// DefaultOptions mirror the thresholds the detector was tuned with: tokens
// of three characters or fewer are never flagged, anything seen more than ten
// times in the corpus is treated as intentional vocabulary, and the model is
// asked for its 25 best fillers.
var DefaultOptions = PipelineOptions{
	MinTokenLength:  3,
	MaxFrequency:    10,
	TopK:            25,
	OracleTimeout:   0,
	ShareCandidates: false,
	Concurrency:     1,
}

type PipelineOptions struct {
	MinTokenLength  int           // Tokens with at most this many characters are never errors
	MaxFrequency    int           // Corpus count above which a token is accepted regardless of the lexicon
	TopK            int           // Candidate set size requested from the oracle
	OracleTimeout   time.Duration // Per-call deadline; 0 leaves the caller's context alone
	ShareCandidates bool          // Reuse the detection candidate set for correction
	Concurrency     int           // Parallel oracle calls within one sentence
	Stopwords       map[string]bool
}

type Options interface {
	Apply(options *PipelineOptions)
}

type FuncConfig struct {
	ops func(options *PipelineOptions)
}

func (w FuncConfig) Apply(conf *PipelineOptions) {
	w.ops(conf)
}

func NewFuncOption(f func(options *PipelineOptions)) *FuncConfig {
	return &FuncConfig{ops: f}
}

// Resolve applies opts on top of DefaultOptions.
func Resolve(opts ...Options) PipelineOptions {
	o := DefaultOptions
	for _, op := range opts {
		if op != nil {
			op.Apply(&o)
		}
	}
	if o.TopK <= 0 {
		o.TopK = DefaultOptions.TopK
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	return o
}

func WithMinTokenLength(n int) Options {
	return NewFuncOption(func(options *PipelineOptions) {
		options.MinTokenLength = n
	})
}

func WithMaxFrequency(n int) Options {
	return NewFuncOption(func(options *PipelineOptions) {
		options.MaxFrequency = n
	})
}

func WithTopK(k int) Options {
	return NewFuncOption(func(options *PipelineOptions) {
		options.TopK = k
	})
}

func WithOracleTimeout(d time.Duration) Options {
	return NewFuncOption(func(options *PipelineOptions) {
		options.OracleTimeout = d
	})
}

// WithSharedCandidates lets correction reuse the candidate set fetched
// during detection of the same position instead of asking again.
func WithSharedCandidates() Options {
	return NewFuncOption(func(options *PipelineOptions) {
		options.ShareCandidates = true
	})
}

func WithConcurrency(n int) Options {
	return NewFuncOption(func(options *PipelineOptions) {
		options.Concurrency = n
	})
}

// WithStopwords excludes the given words from context-sensitive detection.
// A token matches by its exact surface or by its normalized lookup key.
func WithStopwords(words ...string) Options {
	return NewFuncOption(func(options *PipelineOptions) {
		set := make(map[string]bool, len(options.Stopwords)+len(words))
		for w := range options.Stopwords {
			set[w] = true
		}
		for _, w := range words {
			set[w] = true
		}
		options.Stopwords = set
	})
}
