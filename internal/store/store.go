package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Broconuts/TransSpell/internal/batch"
	"github.com/Broconuts/TransSpell/internal/corrector"
	"github.com/Broconuts/TransSpell/internal/frequency"
	"github.com/Broconuts/TransSpell/internal/textnorm"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Run is one batch invocation.
type Run struct {
	ID        int64
	Source    string
	StartedAt time.Time
}

// Row is a stored annotation. Error is set, and the verdict columns are
// empty, for a sentence that failed as a whole.
type Row struct {
	SentenceIndex int
	Position      int
	Surface       string
	Verdict       corrector.Verdict
	Insensitive   corrector.Verdict
	Contextual    corrector.Verdict
	Correction    corrector.Correction
	Error         string
}

// CreateRun inserts a run and returns its id.
func CreateRun(db DBExecutor, source string) (int64, error) {
	res, err := db.Exec(`INSERT INTO runs (source) VALUES (?)`, source)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// GetRun loads a run by id.
func GetRun(db DBExecutor, id int64) (Run, error) {
	var r Run
	err := db.QueryRow(`SELECT id, source, started_at FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Source, &r.StartedAt)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// SaveOutcome stores every annotation of one sentence. A failed sentence
// is stored as a single row at position -1 carrying the error text.
func SaveOutcome(db DBExecutor, runID int64, o batch.Outcome) error {
	if runID <= 0 {
		return fmt.Errorf("runID must be positive")
	}
	if o.Err != nil {
		_, err := db.Exec(
			`INSERT INTO annotations (run_id, sentence_index, position, surface, verdict, insensitive, contextual, error)
			 VALUES (?, ?, -1, '', '', '', '', ?)`,
			runID, o.Index, o.Err.Error(),
		)
		if err != nil {
			return fmt.Errorf("insert failed sentence %d: %w", o.Index, err)
		}
		return nil
	}
	for _, a := range o.Result.Annotations {
		var corr sql.NullString
		if a.Correction.Present {
			corr = sql.NullString{String: a.Correction.Surface, Valid: true}
		}
		_, err := db.Exec(
			`INSERT INTO annotations (run_id, sentence_index, position, surface, verdict, insensitive, contextual, correction)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(run_id, sentence_index, position) DO UPDATE SET
			   surface = excluded.surface,
			   verdict = excluded.verdict,
			   insensitive = excluded.insensitive,
			   contextual = excluded.contextual,
			   correction = excluded.correction`,
			runID, o.Index, a.Position, a.Surface,
			a.Verdict.String(), a.Insensitive.String(), a.Contextual.String(), corr,
		)
		if err != nil {
			return fmt.Errorf("insert annotation %d/%d: %w", o.Index, a.Position, err)
		}
	}
	return nil
}

// SaveOutcomes stores a whole run inside one transaction.
func SaveOutcomes(db *sql.DB, runID int64, outcomes []batch.Outcome) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		if err := SaveOutcome(tx, runID, o); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// AnnotationsByRun returns the rows of a run ordered by sentence and
// position.
func AnnotationsByRun(db DBExecutor, runID int64) ([]Row, error) {
	rows, err := db.Query(
		`SELECT sentence_index, position, surface, verdict, insensitive, contextual, correction, error
		 FROM annotations WHERE run_id = ? ORDER BY sentence_index, position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r                                Row
			verdict, insensitive, contextual string
			corr                             sql.NullString
		)
		if err := rows.Scan(&r.SentenceIndex, &r.Position, &r.Surface,
			&verdict, &insensitive, &contextual, &corr, &r.Error); err != nil {
			return nil, err
		}
		if r.Error == "" {
			if err := r.Verdict.UnmarshalText([]byte(verdict)); err != nil {
				return nil, err
			}
			if err := r.Insensitive.UnmarshalText([]byte(insensitive)); err != nil {
				return nil, err
			}
			if err := r.Contextual.UnmarshalText([]byte(contextual)); err != nil {
				return nil, err
			}
		}
		if corr.Valid {
			r.Correction = corrector.Some(corr.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveFrequencyTable replaces the stored frequency table with t.
func SaveFrequencyTable(db *sql.DB, t *frequency.Table) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM frequencies`); err != nil {
		tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO frequencies (word, count) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, e := range t.Entries() {
		if _, err := stmt.Exec(e.Word, e.Count); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert frequency %q: %w", e.Word, err)
		}
	}
	return tx.Commit()
}

// LoadFrequencyTable reads the stored counts back. The counts are already
// normalized, so lookups apply normalize to the query only.
func LoadFrequencyTable(db DBExecutor, normalize textnorm.Normalizer) (*frequency.Table, error) {
	rows, err := db.Query(`SELECT word, count FROM frequencies`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var w string
		var c int
		if err := rows.Scan(&w, &c); err != nil {
			return nil, err
		}
		counts[w] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return frequency.FromCounts(counts, normalize), nil
}
