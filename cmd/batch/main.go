package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheynewallace/tabby"

	"github.com/Broconuts/TransSpell/internal/batch"
	"github.com/Broconuts/TransSpell/internal/corpus"
	"github.com/Broconuts/TransSpell/internal/corrector"
	"github.com/Broconuts/TransSpell/internal/frequency"
	"github.com/Broconuts/TransSpell/internal/lexicon"
	"github.com/Broconuts/TransSpell/internal/oracle"
	"github.com/Broconuts/TransSpell/internal/store"
	"github.com/Broconuts/TransSpell/internal/textnorm"
	"github.com/Broconuts/TransSpell/pkg/options"
)

func main() {
	corpusFlag := flag.String("corpus", "", "Corpus file (.txt, .csv or .html) used to build the frequency table")
	columnFlag := flag.String("column", corpus.DefaultColumn, "CSV column holding the documents")
	wordlistsFlag := flag.String("wordlists", "", "Comma separated wordlists, each path or name=path")
	inputFlag := flag.String("input", "-", "Text to check; - reads stdin")
	oracleFlag := flag.String("oracle-url", "http://localhost:8000/fill-mask", "Fill-mask endpoint")
	topKFlag := flag.Int("topk", options.DefaultOptions.TopK, "Candidates requested per masked position")
	workersFlag := flag.Int("workers", 4, "Sentences processed concurrently")
	timeoutFlag := flag.Duration("timeout", 10*time.Second, "Timeout per oracle call")
	dbFlag := flag.String("db", "", "Path to SQLite database; empty disables persistence")
	loadFreqFlag := flag.Bool("load-freq", false, "Reuse the frequency table stored in -db instead of reading -corpus")
	stopwordsFlag := flag.String("stopwords", "", "Stop words skipped by context detection: a wordlist path or \"english\"")
	allFlag := flag.Bool("all", false, "Print every token, not only errors")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var conn *sql.DB
	if *dbFlag != "" {
		var err error
		conn, err = store.Open(*dbFlag)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer conn.Close()
	}

	freq, err := loadFrequencies(conn, *corpusFlag, *columnFlag, *loadFreqFlag)
	if err != nil {
		log.Fatalf("Failed to build frequency table: %v", err)
	}
	lex, err := lexicon.LoadWordlists(*wordlistsFlag, textnorm.Clean)
	if err != nil {
		log.Fatalf("Failed to load wordlists: %v", err)
	}
	stopwords, err := lexicon.LoadStopwords(*stopwordsFlag)
	if err != nil {
		log.Fatalf("Failed to load stop words: %v", err)
	}
	fmt.Printf("frequency table: %d words, lexicon: %d entries %v\n", freq.Len(), lex.Size(), lex.Dialects())

	text, err := readInput(*inputFlag)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	cache, err := oracle.NewLRUCache(4096)
	if err != nil {
		log.Fatalf("Failed to create oracle cache: %v", err)
	}
	o := &oracle.Cached{Oracle: oracle.NewHTTP(*oracleFlag, *timeoutFlag), Cache: cache}

	p := corrector.NewPipeline(freq, lex, o,
		options.WithTopK(*topKFlag),
		options.WithOracleTimeout(*timeoutFlag),
		options.WithStopwords(stopwords...),
	)
	p.Logger = log.Default()
	runner := batch.NewRunner(p, *workersFlag)
	runner.Logger = log.Default()

	start := time.Now()
	outcomes, err := runner.RunText(ctx, text)
	if err != nil {
		log.Printf("Run interrupted: %v", err)
	}
	printOutcomes(outcomes, *allFlag)
	fmt.Printf("\n%d sentences checked in %vms\n", len(outcomes), time.Since(start).Milliseconds())

	if conn != nil {
		runID, err := store.CreateRun(conn, *inputFlag)
		if err != nil {
			log.Fatalf("Failed to create run: %v", err)
		}
		if err := store.SaveOutcomes(conn, runID, outcomes); err != nil {
			log.Fatalf("Failed to save run: %v", err)
		}
		fmt.Printf("Saved run %d to %s\n", runID, *dbFlag)
	}
}

// loadFrequencies builds the table from the corpus, or restores it from
// the database. A missing corpus is not fatal: every count is then zero.
func loadFrequencies(conn *sql.DB, path, column string, fromDB bool) (*frequency.Table, error) {
	if fromDB {
		if conn == nil {
			return nil, fmt.Errorf("-load-freq needs -db")
		}
		return store.LoadFrequencyTable(conn, textnorm.Clean)
	}
	if path == "" {
		log.Printf("Warning: no corpus given. Proceeding without frequency list.")
		return frequency.Empty(), nil
	}
	docs, err := corpus.ReadFileColumn(path, column)
	if err != nil {
		log.Printf("Warning: corpus %s: %v. Proceeding without frequency list.", path, err)
		return frequency.Empty(), nil
	}
	t := frequency.Build(corpus.Sentences(docs), textnorm.Clean)
	if conn != nil {
		if err := store.SaveFrequencyTable(conn, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func readInput(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	return string(b), err
}

func printOutcomes(outcomes []batch.Outcome, all bool) {
	table := tabby.New()
	table.AddHeader("Sentence", "Position", "Token", "Verdict", "Correction")
	for _, o := range outcomes {
		if o.Err != nil {
			table.AddLine(o.Index+1, "-", "", "failed", o.Err.Error())
			continue
		}
		for _, a := range o.Result.Annotations {
			if !all && !a.Verdict.IsError() {
				continue
			}
			table.AddLine(o.Index+1, a.Position, a.Surface, a.Verdict, a.Correction)
		}
	}
	table.Print()
}
