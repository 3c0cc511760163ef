package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/robalobadob/bingo/internal/card"
	"github.com/robalobadob/bingo/internal/catalog"
	"github.com/robalobadob/bingo/internal/keycodec"
	"github.com/robalobadob/bingo/internal/ledger"
	"github.com/robalobadob/bingo/internal/store"
)

const identityKey = "000102030405060708090a0b0c0d0e0f1011121314151617"

func newTestServer(t *testing.T) (*Server, *ledger.Store) {
	t.Helper()
	t.Setenv("CARD_SECRET", "test-secret")
	t.Setenv("DAILY_SALT", "test-salt")

	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "bingo.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := ledger.Migrate(db); err != nil {
		t.Fatal(err)
	}
	led := ledger.NewStore(db)
	dealer := &card.Dealer{Catalog: cat, Source: rand.New(rand.NewSource(1)), Celebrator: led}
	return New(dealer, store.NewMemoryStore(), led), led
}

func do(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func newCard(t *testing.T, s *Server, body map[string]any) newCardRes {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/card/new", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /card/new: %d %s", rec.Code, rec.Body.String())
	}
	var res newCardRes
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	return res
}

func TestNewCardGenerated(t *testing.T) {
	s, _ := newTestServer(t)
	res := newCard(t, s, map[string]any{"location": "https://bingo.example/"})

	if !res.Generated || len(res.Key) != keycodec.KeyLen || res.Token == "" {
		t.Fatalf("response %+v", res)
	}
	u, err := url.Parse(res.ShareURL)
	if err != nil || u.Query().Get("key") != res.Key || u.Host != "bingo.example" {
		t.Fatalf("share url %q", res.ShareURL)
	}
	if !res.Cells[2][2].Free {
		t.Fatal("centre should be free")
	}
	if res.CatalogVersion != "earnings-call-2024.1" {
		t.Fatalf("catalog version %q", res.CatalogVersion)
	}
}

func TestNewCardSuppliedKey(t *testing.T) {
	s, _ := newTestServer(t)
	loc := "https://bingo.example/?key=" + identityKey
	res := newCard(t, s, map[string]any{"key": identityKey, "location": loc})
	if res.Generated || res.ShareURL != loc || res.Key != identityKey {
		t.Fatalf("response %+v", res)
	}
	if res.Cells[0][0].Text != "“Headwinds”" { // catalog index 23
		t.Fatalf("first cell %q", res.Cells[0][0].Text)
	}

	// Codes past the 42-phrase catalog degrade to the placeholder.
	res = newCard(t, s, map[string]any{"key": identityKey[:46] + "ff"})
	if res.Cells[0][0].Known || res.Cells[0][0].Text != catalog.Placeholder {
		t.Fatalf("out-of-range cell %+v", res.Cells[0][0])
	}
}

func TestNewCardBadKey(t *testing.T) {
	s, _ := newTestServer(t)
	for _, key := range []string{"abc", identityKey + "181"} {
		rec := do(t, s, http.MethodPost, "/card/new", map[string]any{"key": key}, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("key %q: status %d", key, rec.Code)
		}
	}
	rec := do(t, s, http.MethodPost, "/card/new", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body: status %d", rec.Code)
	}
}

func mark(t *testing.T, s *Server, c newCardRes, row, col int) (int, markRes) {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/card/mark", markReq{CardID: c.CardID, Row: row, Col: col}, c.Token)
	var res markRes
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatal(err)
		}
	}
	return rec.Code, res
}

func TestMarkToBingo(t *testing.T) {
	s, led := newTestServer(t)
	c := newCard(t, s, map[string]any{"key": identityKey})

	for _, p := range [][2]int{{0, 4}, {1, 3}, {3, 1}} {
		code, res := mark(t, s, c, p[0], p[1])
		if code != http.StatusOK || !res.Marked || res.Bingo {
			t.Fatalf("mark %v: %d %+v", p, code, res)
		}
	}
	code, res := mark(t, s, c, 4, 0)
	if code != http.StatusOK || !res.Bingo || res.Message != bingoMessage || len(res.Confetti) != 5 {
		t.Fatalf("winning mark: %d %+v", code, res)
	}
	if res.Line == nil || res.Line.String() != "anti-diagonal" {
		t.Fatalf("line %+v", res.Line)
	}

	// No latch: another winning toggle celebrates again.
	if _, res := mark(t, s, c, 0, 0); !res.Bingo {
		t.Fatal("second winning toggle should be a bingo")
	}

	st, err := led.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Cards != 1 || st.Wins != 2 {
		t.Fatalf("ledger %+v", st)
	}
}

func TestMarkRejects(t *testing.T) {
	s, _ := newTestServer(t)
	a := newCard(t, s, map[string]any{"key": identityKey})
	b := newCard(t, s, map[string]any{})

	if code, _ := mark(t, s, a, 2, 2); code != http.StatusBadRequest {
		t.Fatalf("free cell: %d", code)
	}
	if code, _ := mark(t, s, a, 5, 0); code != http.StatusBadRequest {
		t.Fatalf("off grid: %d", code)
	}

	// Token for card b cannot mark card a.
	rec := do(t, s, http.MethodPost, "/card/mark", markReq{CardID: a.CardID}, b.Token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cross-card token: %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/card/mark", markReq{CardID: a.CardID}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/card/mark", markReq{CardID: a.CardID}, a.Token+"x")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tampered token: %d", rec.Code)
	}
}

func TestMarkSweptCardIsNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	c := newCard(t, s, map[string]any{})
	if code, _ := mark(t, s, c, 0, 0); code != http.StatusOK {
		t.Fatalf("first mark: %d", code)
	}

	s.store.Sweep(time.Now().Add(time.Hour))

	rec := do(t, s, http.MethodPost, "/card/mark", markReq{CardID: c.CardID, Row: 0, Col: 1}, c.Token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("swept card: status %d", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error != "not_found" {
		t.Fatalf("swept card body %q (%v)", rec.Body.String(), err)
	}

	// The client recovers by re-dealing the same key and replaying its marks.
	again := newCard(t, s, map[string]any{"key": c.Key})
	if again.Key != c.Key || again.Cells != c.Cells {
		t.Fatalf("re-dealt card differs: %q vs %q", again.Key, c.Key)
	}
	for _, p := range [][2]int{{0, 0}, {0, 1}} {
		if code, res := mark(t, s, again, p[0], p[1]); code != http.StatusOK || !res.Marked {
			t.Fatalf("replayed mark %v: %d %+v", p, code, res)
		}
	}
}

func TestNewCardLongKey(t *testing.T) {
	s, _ := newTestServer(t)
	res := newCard(t, s, map[string]any{"key": identityKey + "1819"})
	// 26 codes: the first cell shows code 25.
	if got, want := res.Cells[0][0].Index, 25; got != want {
		t.Fatalf("first cell index %d, want %d", got, want)
	}
}

func TestQRTargetEscapesSuppliedKey(t *testing.T) {
	s, _ := newTestServer(t)
	key := "0001&x#y"
	c, err := s.dealer.Deal(key, true)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "http://example.com/card/"+c.ID+"/qr", nil)
	u, err := url.Parse(qrTarget(req, c))
	if err != nil {
		t.Fatal(err)
	}
	if got := u.Query().Get("key"); got != key {
		t.Fatalf("QR target %q carries key %q, want %q", u, got, key)
	}
	if u.Fragment != "" {
		t.Fatalf("QR target has fragment %q", u.Fragment)
	}
}

func TestTokenExpiry(t *testing.T) {
	ti := newTokenIssuer("k")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ti.now = func() time.Time { return now }
	tok, _, err := ti.issue("card-1")
	if err != nil {
		t.Fatal(err)
	}
	if id, err := ti.verify(tok); err != nil || id != "card-1" {
		t.Fatalf("verify = %q, %v", id, err)
	}
	now = now.Add(cardTokenTTL + time.Minute)
	if _, err := ti.verify(tok); err == nil {
		t.Fatal("expired token accepted")
	}
	if _, err := newTokenIssuer("other").verify(tok); err == nil {
		t.Fatal("token accepted under a different secret")
	}
}

func TestDecodeEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/card/decode?key="+identityKey, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var res decodeRes
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if !res.Complete || len(res.Items) != 24 || res.Items[0].Text != "“Color” question" {
		t.Fatalf("decode %+v", res)
	}

	rec = do(t, s, http.MethodGet, "/card/decode?key=0000", nil, "")
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if res.Complete {
		t.Fatal("short duplicate key reported complete")
	}
	if rec := do(t, s, http.MethodGet, "/card/decode?key=0", nil, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("odd key: %d", rec.Code)
	}
}

func TestQR(t *testing.T) {
	s, _ := newTestServer(t)
	c := newCard(t, s, map[string]any{})
	rec := do(t, s, http.MethodGet, "/card/"+c.CardID+"/qr", nil, "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("qr body is not a PNG")
	}
	if rec := do(t, s, http.MethodGet, "/card/nope/qr", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown card: %d", rec.Code)
	}
}

func TestDailyRecordedInLedger(t *testing.T) {
	s, led := newTestServer(t)
	s.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }

	rec := do(t, s, http.MethodGet, "/daily", nil, "")
	var d dailyRes
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil || d.Date != "2026-10-19" || len(d.Key) != keycodec.KeyLen {
		t.Fatalf("daily %d %s", rec.Code, rec.Body.String())
	}
	if d.SharePath != "/?key="+d.Key {
		t.Fatalf("share path %q", d.SharePath)
	}

	newCard(t, s, map[string]any{"key": d.Key})
	newCard(t, s, map[string]any{"key": identityKey})
	st, _ := led.Stats(context.Background())
	if st.Cards != 2 || st.Daily != 1 {
		t.Fatalf("ledger %+v", st)
	}
}

func TestIndexCatalogHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/?key="+identityKey, nil, "")
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("bingo-card")) {
		t.Fatalf("index: %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/static/app.js", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("app.js: %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/catalog", nil, "")
	var cat catalogRes
	if err := json.Unmarshal(rec.Body.Bytes(), &cat); err != nil || len(cat.Phrases) != 42 || cat.Fingerprint == "" {
		t.Fatalf("catalog %s", rec.Body.String())
	}

	if rec := do(t, s, http.MethodGet, "/health", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/nope", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("404: %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/stats", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("stats: %d", rec.Code)
	}
}

func TestStatsDisabledWithoutLedger(t *testing.T) {
	cat, _ := catalog.Default()
	s := New(&card.Dealer{Catalog: cat}, store.NewMemoryStore(), nil)
	if rec := do(t, s, http.MethodGet, "/stats", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("stats without ledger: %d", rec.Code)
	}
	// Dealing still works with no ledger.
	newCard(t, s, map[string]any{"key": fmt.Sprintf("%048d", 0)})
}
