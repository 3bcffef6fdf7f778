package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Broconuts/TransSpell/internal/corrector"
	"github.com/Broconuts/TransSpell/internal/customdict"
	"github.com/Broconuts/TransSpell/internal/frequency"
	"github.com/Broconuts/TransSpell/internal/lexicon"
	"github.com/Broconuts/TransSpell/internal/oracle"
	"github.com/Broconuts/TransSpell/internal/textnorm"
	"github.com/Broconuts/TransSpell/pkg/options"
)

var vocabulary = []string{"i", "made", "must", "a", "mistake", "we", "the", "zorbly", "test"}

func newTestServer(t *testing.T, st *oracle.Static) (*Server, *customdict.CustomDict) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	dict := customdict.New(client)

	base := lexicon.New(lexicon.NewDialect("en", vocabulary[:len(vocabulary)-2], textnorm.Clean))
	srv, err := NewServer(context.Background(), Config{
		Frequencies: frequency.Empty(),
		Lexicon:     base,
		Oracle:      st,
		Dict:        dict,
		Normalize:   textnorm.Clean,
		Workers:     2,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, dict
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCorrectEndpoint(t *testing.T) {
	toks := strings.Fields("I made a mistake")
	st := oracle.NewStatic()
	st.Set(toks, 1, "must", "should")
	st.Set(toks, 2, "a")
	srv, _ := newTestServer(t, st)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/correct", map[string]string{"text": "I made a mistake"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp correctResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Corrected != "I must a mistake" {
		t.Errorf("corrected = %q", resp.Corrected)
	}
	if len(resp.Sentences) != 1 || len(resp.Sentences[0].Annotations) != 4 {
		t.Fatalf("unexpected sentences %+v", resp.Sentences)
	}
	made := resp.Sentences[0].Annotations[1]
	if made.Verdict != corrector.WordError || made.Correction.Surface != "must" {
		t.Errorf("unexpected annotation %+v", made)
	}
}

func TestCorrectRejectsEmptyText(t *testing.T) {
	srv, _ := newTestServer(t, oracle.NewStatic())
	for _, body := range []interface{}{map[string]string{"text": "   "}, nil} {
		rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/correct", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	}
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/correct", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET status = %d, want 404", rec.Code)
	}
}

func TestCorrectOracleFailure(t *testing.T) {
	st := oracle.NewStatic()
	st.FailWith(oracle.ErrUnavailable)
	srv, _ := newTestServer(t, st)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/correct", map[string]string{"text": "I made a mistake"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestCorrectKeepsCompletedSentences(t *testing.T) {
	good := strings.Fields("I made a mistake.")
	st := oracle.NewStatic()
	st.Set(good, 1, "must")
	st.Set(good, 2, "a")
	flaky := oracle.Func(func(ctx context.Context, seq []string, pos, k int) ([]string, error) {
		if seq[0] == "Broken" {
			return nil, oracle.ErrUnavailable
		}
		return st.Predict(ctx, seq, pos, k)
	})
	srv, _ := newTestServer(t, oracle.NewStatic())
	srv.cfg.Oracle = flaky
	if err := srv.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/correct",
		map[string]string{"text": "I made a mistake. Broken sentence here now"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var resp correctResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(resp.Sentences))
	}
	first, second := resp.Sentences[0], resp.Sentences[1]
	if first.Error != "" || len(first.Annotations) != 4 {
		t.Errorf("completed sentence lost: %+v", first)
	}
	if second.Error == "" || !second.Retryable || len(second.Annotations) != 0 {
		t.Errorf("failed sentence = %+v", second)
	}
	if resp.Error == "" {
		t.Error("expected a top-level error")
	}
	if resp.Corrected != "I must a mistake. Broken sentence here now" {
		t.Errorf("corrected = %q", resp.Corrected)
	}
}

func TestCorrectWithEnglishStopwords(t *testing.T) {
	stop, err := lexicon.LoadStopwords(lexicon.EnglishStopwords)
	if err != nil {
		t.Fatal(err)
	}
	toks := strings.Fields("I made a mistake")
	st := oracle.NewStatic()
	st.Set(toks, 1, "must")
	srv, _ := newTestServer(t, st)
	srv.cfg.Options = []options.Options{options.WithStopwords(stop...)}
	if err := srv.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/correct", map[string]string{"text": "I made a mistake"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	for _, c := range st.Calls() {
		if c.Position == 2 {
			t.Fatal("stop word \"a\" sent to the oracle")
		}
	}
	if n := len(st.Calls()); n != 2 {
		t.Fatalf("expected detection and correction calls for \"made\" only, got %d", n)
	}
}

func TestCustomWordSwapsPipeline(t *testing.T) {
	toks := strings.Fields("we zorbly the test")
	st := oracle.NewStatic()
	st.Set(toks, 1, "zorbly")
	st.Set(toks, 2, "the")
	srv, dict := newTestServer(t, st)
	h := srv.Handler()

	check := func(want corrector.Verdict) {
		t.Helper()
		rec := do(t, h, http.MethodPost, "/api/v1/correct", map[string]string{"text": "we zorbly the test"})
		var resp correctResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got := resp.Sentences[0].Annotations[1].Verdict; got != want {
			t.Fatalf("zorbly verdict = %v, want %v", got, want)
		}
	}

	check(corrector.NonWordError)
	before := srv.Pipeline()

	rec := do(t, h, http.MethodPost, "/api/v1/custom-word", map[string]string{"word": "zorbly"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d", rec.Code)
	}
	if srv.Pipeline() == before {
		t.Fatal("pipeline was not replaced")
	}
	check(corrector.NotAnError)

	words, err := dict.All(context.Background())
	if err != nil || len(words) != 1 || words[0] != "zorbly" {
		t.Fatalf("dict = %v, %v", words, err)
	}
	rec = do(t, h, http.MethodGet, "/api/v1/custom-word", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "zorbly") {
		t.Fatalf("list = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodDelete, "/api/v1/custom-word/zorbly", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	check(corrector.NonWordError)
}

func TestCustomWordValidation(t *testing.T) {
	srv, _ := newTestServer(t, oracle.NewStatic())
	h := srv.Handler()
	if rec := do(t, h, http.MethodPost, "/api/v1/custom-word", map[string]string{"word": " "}); rec.Code != http.StatusBadRequest {
		t.Errorf("blank word status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/v1/custom-word/", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing word status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/v1/custom-word", nil); rec.Code != http.StatusNotFound {
		t.Errorf("PUT status = %d", rec.Code)
	}
}
