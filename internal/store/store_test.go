package store

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/Broconuts/TransSpell/internal/batch"
	"github.com/Broconuts/TransSpell/internal/corrector"
	"github.com/Broconuts/TransSpell/internal/frequency"
	"github.com/Broconuts/TransSpell/internal/textnorm"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func sampleOutcome() batch.Outcome {
	return batch.Outcome{
		Index:  0,
		Tokens: []string{"I", "made", "it"},
		Result: corrector.Result{Annotations: []corrector.Annotation{
			{Position: 0, Surface: "I", Role: corrector.RoleFirst, Verdict: corrector.NotAnError, Insensitive: corrector.NotAnError, Contextual: corrector.Unsupported},
			{Position: 1, Surface: "made", Role: corrector.RoleInterior, Verdict: corrector.WordError, Insensitive: corrector.NotAnError, Contextual: corrector.WordError, Correction: corrector.Some("must")},
			{Position: 2, Surface: "it", Role: corrector.RoleLast, Verdict: corrector.NotAnError, Insensitive: corrector.NotAnError, Contextual: corrector.Unsupported},
		}},
	}
}

func TestInitDBIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if err := InitDB(db); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestCreateAndGetRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id, err := CreateRun(db, "answers.csv")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	r, err := GetRun(db, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if r.Source != "answers.csv" || r.StartedAt.IsZero() {
		t.Fatalf("unexpected run %+v", r)
	}
	if _, err := GetRun(db, id+1); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestSaveOutcomesAndQuery(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	runID, err := CreateRun(db, "stdin")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	failed := batch.Outcome{Index: 1, Err: errors.New("oracle down")}
	if err := SaveOutcomes(db, runID, []batch.Outcome{sampleOutcome(), failed}); err != nil {
		t.Fatalf("save: %v", err)
	}

	rows, err := AnnotationsByRun(db, runID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	made := rows[1]
	if made.Surface != "made" || made.Verdict != corrector.WordError || made.Contextual != corrector.WordError {
		t.Errorf("unexpected row %+v", made)
	}
	if !made.Correction.Present || made.Correction.Surface != "must" {
		t.Errorf("expected correction must, got %v", made.Correction)
	}
	if rows[0].Correction.Present {
		t.Errorf("absent correction should load as absent, got %v", rows[0].Correction)
	}
	if rows[3].SentenceIndex != 1 || rows[3].Position != -1 || rows[3].Error != "oracle down" {
		t.Errorf("unexpected failure row %+v", rows[3])
	}
}

func TestSaveOutcomeRejectsBadRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if err := SaveOutcome(db, 0, sampleOutcome()); err == nil {
		t.Fatal("expected error for run id 0")
	}
}

func TestFrequencyTableRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	tbl := frequency.Build([][]string{{"The", "cat", "the"}, {"cat."}}, textnorm.Clean)
	if err := SaveFrequencyTable(db, tbl); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Saving again replaces rather than accumulates.
	if err := SaveFrequencyTable(db, tbl); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, err := LoadFrequencyTable(db, textnorm.Clean)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Len() != tbl.Len() {
		t.Fatalf("expected %d entries, got %d", tbl.Len(), got.Len())
	}
	for _, w := range []string{"the", "THE", "cat", "Cat!"} {
		if got.Count(w) != tbl.Count(w) {
			t.Errorf("count(%q) = %d, want %d", w, got.Count(w), tbl.Count(w))
		}
	}
}
