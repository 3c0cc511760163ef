// internal/httpserver/routes_card.go
//
// HTTP routes for a single card:
//   - POST /card/new       → deal a card for a supplied key, or a fresh one
//   - POST /card/mark      → toggle a cell (card token required)
//   - GET  /card/{id}/qr   → PNG QR code of the card's share link
//   - GET  /card/decode    → what a key decodes to against this catalog

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/robalobadob/bingo/internal/board"
	"github.com/robalobadob/bingo/internal/card"
	"github.com/robalobadob/bingo/internal/catalog"
	"github.com/robalobadob/bingo/internal/daily"
	"github.com/robalobadob/bingo/internal/keycodec"
)

// bingoMessage is revealed by the client on every winning toggle.
const bingoMessage = "BINGO!"

func (s *Server) mountCard(r chi.Router) {
	r.Route("/card", func(r chi.Router) {
		r.Post("/new", s.handleNewCard)
		r.With(s.requireCardToken()).Post("/mark", s.handleMark)
		r.Get("/decode", s.handleDecode)
		r.Get("/{id}/qr", s.handleQR)
	})
}

// -----------------------------------------------------------------------------
// /card/new

// newCardReq is the body of POST /card/new. Key is nil when the page URL had
// no key parameter; an empty string means the parameter was present but empty.
type newCardReq struct {
	Key      *string `json:"key"`
	Location string  `json:"location"`
}

type newCardRes struct {
	CardID         string                            `json:"cardId"`
	Token          string                            `json:"token"`
	Key            string                            `json:"key"`
	Generated      bool                              `json:"generated"`
	ShareURL       string                            `json:"shareUrl"`
	CatalogVersion string                            `json:"catalogVersion"`
	Cells          [board.Size][board.Size]card.Cell `json:"cells"`
}

// handleNewCard resolves the key, deals the card, stores it, and returns the
// grid with a token for marking it.
func (s *Server) handleNewCard(w http.ResponseWriter, r *http.Request) {
	var req newCardReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	var key string
	if req.Key != nil {
		key = *req.Key
	}
	c, err := s.dealer.Deal(key, req.Key != nil)
	if err != nil {
		if errors.Is(err, keycodec.ErrOddLength) {
			http.Error(w, `{"error":"bad_key"}`, http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("deal card")
		http.Error(w, `{"error":"deal_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), c); err != nil {
		log.Error().Err(err).Msg("save card")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	if s.ledger != nil {
		dailyDate := ""
		if date, todays, err := s.dailyKey(); err == nil && todays == c.Key {
			dailyDate = date
		}
		if err := s.ledger.RecordCard(r.Context(), c, dailyDate); err != nil {
			log.Warn().Err(err).Str("card", c.ID).Msg("record card")
		}
	}

	tok, _, err := s.tokens.issue(c.ID)
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}

	loc := req.Location
	if loc == "" {
		loc = requestLocation(r)
	}
	log.Info().Str("card", c.ID).Bool("generated", c.Generated).Msg("card dealt")
	_ = json.NewEncoder(w).Encode(newCardRes{
		CardID:         c.ID,
		Token:          tok,
		Key:            c.Key,
		Generated:      c.Generated,
		ShareURL:       c.ShareURL(loc),
		CatalogVersion: c.CatalogVersion,
		Cells:          c.Cells(),
	})
}

// -----------------------------------------------------------------------------
// /card/mark

type markReq struct {
	CardID string `json:"cardId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

type markRes struct {
	Marked   bool         `json:"marked"`
	Bingo    bool         `json:"bingo"`
	Line     *board.Line  `json:"line,omitempty"`
	Message  string       `json:"message,omitempty"`
	Confetti []card.Burst `json:"confetti,omitempty"`
}

// handleMark toggles one cell. Every toggle that leaves a complete line comes
// back as a bingo with the confetti plan.
func (s *Server) handleMark(w http.ResponseWriter, r *http.Request) {
	var req markReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.CardID == "" || req.CardID != tokenCardID(r) {
		http.Error(w, `{"error":"wrong_card"}`, http.StatusForbidden)
		return
	}
	c, err := s.store.Get(r.Context(), req.CardID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	out, err := c.Toggle(r.Context(), board.Pos{Row: req.Row, Col: req.Col})
	switch {
	case errors.Is(err, card.ErrFreeCell):
		http.Error(w, `{"error":"free_cell"}`, http.StatusBadRequest)
		return
	case errors.Is(err, card.ErrOutOfBounds):
		http.Error(w, `{"error":"out_of_bounds"}`, http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, `{"error":"toggle_failed"}`, http.StatusInternalServerError)
		return
	}

	res := markRes{Marked: out.Marked, Bingo: out.Bingo, Line: out.Line}
	if out.Bingo {
		res.Message = bingoMessage
		res.Confetti = card.ConfettiPlan()
		log.Info().Str("card", c.ID).Stringer("line", out.Line).Msg("bingo")
	}
	_ = json.NewEncoder(w).Encode(res)
}

// -----------------------------------------------------------------------------
// /card/{id}/qr

// handleQR renders the card's share link as a PNG. The page location may be
// passed as ?location=; it defaults to this server's root.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(qrTarget(r, c), qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, `{"error":"qr_failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(png)
}

// qrTarget is the link a card's QR code opens: the share URL for the page
// location in ?location=, or for this server's root.
func qrTarget(r *http.Request, c *card.Card) string {
	if loc := r.URL.Query().Get("location"); loc != "" {
		return c.ShareURL(loc)
	}
	loc := requestLocation(r)
	if !c.Generated {
		loc += "?" + url.Values{"key": {c.Key}}.Encode()
	}
	return c.ShareURL(loc)
}

// -----------------------------------------------------------------------------
// /card/decode

type decodeRes struct {
	Key            string         `json:"key"`
	Indices        []int          `json:"indices"`
	Items          []catalog.Item `json:"items"`
	Complete       bool           `json:"complete"` // 24 codes, all known, all distinct
	CatalogVersion string         `json:"catalogVersion"`
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	idx, err := keycodec.Decode(key)
	if err != nil {
		http.Error(w, `{"error":"bad_key"}`, http.StatusBadRequest)
		return
	}
	items := s.dealer.Catalog.LookupAll(idx)
	_ = json.NewEncoder(w).Encode(decodeRes{
		Key:            key,
		Indices:        idx,
		Items:          items,
		Complete:       complete(items),
		CatalogVersion: s.dealer.Catalog.Version(),
	})
}

// complete reports whether items fill a whole card without repeats.
func complete(items []catalog.Item) bool {
	if len(items) != keycodec.Cells {
		return false
	}
	seen := make(map[int]bool, len(items))
	for _, it := range items {
		if !it.Known || seen[it.Index] {
			return false
		}
		seen[it.Index] = true
	}
	return true
}

// dailyKey returns today's date and key.
func (s *Server) dailyKey() (string, string, error) {
	now := s.now()
	key, err := daily.Key(now, getEnv("DAILY_SALT", "local_dev_salt"), s.dealer.Catalog.Len())
	return daily.DateKey(now), key, err
}
