// internal/httpserver/server.go
//
// HTTP server wiring for the bingo backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     access log, JSON, CORS).
//   - Browser client: "/" and "/static/*" from the embedded assets.
//   - Card endpoints: POST /card/new, POST /card/mark (card token required),
//     GET /card/{id}/qr, GET /card/decode.
//   - Daily card: GET /daily.
//   - Diagnostics: /health, /catalog, /stats.
//
// Notes:
//   - Cards live in the in-memory store; the ledger is optional bookkeeping
//     and its failures are logged, never returned to the player.
//   - CORS is origin-aware and credentials-enabled for a separately hosted client.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/card"
	"github.com/robalobadob/bingo/internal/ledger"
	"github.com/robalobadob/bingo/internal/store"
)

// Server bundles the router, card dealer, card store and ledger.
type Server struct {
	r      *chi.Mux
	dealer *card.Dealer
	store  store.Store
	ledger *ledger.Store // nil disables /stats and card/win recording
	tokens *tokenIssuer
	now    func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(dealer *card.Dealer, st store.Store, led *ledger.Store) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		dealer: dealer,
		store:  st,
		ledger: led,
		tokens: newTokenIssuer(getEnv("CARD_SECRET", "dev_secret_change_me")),
		now:    time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

	// --- browser client ---
	s.r.Get("/", s.handleIndex)
	s.r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(assets.Web()))))

	// --- JSON API ---
	s.r.Group(func(r chi.Router) {
		r.Use(jsonContentType)
		r.Use(corsFromEnv)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/catalog", s.handleCatalog)
		r.Get("/stats", s.handleStats)

		s.mountCard(r)
		s.mountDaily(r)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
		})
	})

	return s
}

// Start serves HTTP on addr until ctx is done, then drains in-flight
// requests for up to five seconds.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// handleIndex serves the single-page client. The card key stays in the
// browser's query string; the page forwards it to POST /card/new.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.FS.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, "missing client", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(page)
}

// catalogRes is returned by GET /catalog.
type catalogRes struct {
	Version     string   `json:"version"`
	Fingerprint string   `json:"fingerprint"`
	Phrases     []string `json:"phrases"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.dealer.Catalog
	_ = json.NewEncoder(w).Encode(catalogRes{
		Version:     cat.Version(),
		Fingerprint: cat.Fingerprint(),
		Phrases:     cat.Phrases(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		http.Error(w, `{"error":"stats_disabled"}`, http.StatusNotFound)
		return
	}
	st, err := s.ledger.Stats(r.Context())
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(st)
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
