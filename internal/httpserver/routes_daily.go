// internal/httpserver/routes_daily.go
//
// HTTP route for the "daily card": one key per UTC day shared by everyone.
//   - GET /daily → today's date, key and share path
//
// The key is derived from the date and DAILY_SALT (see package daily), so no
// state is kept. Dealing today's key through POST /card/new records the card
// as a daily card in the ledger.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// dailyRes is returned by GET /daily.
type dailyRes struct {
	Date           string `json:"date"`
	Key            string `json:"key"`
	SharePath      string `json:"sharePath"`
	CatalogVersion string `json:"catalogVersion"`
}

func (s *Server) mountDaily(r chi.Router) {
	r.Get("/daily", s.handleDaily)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	date, key, err := s.dailyKey()
	if err != nil {
		log.Error().Err(err).Msg("daily key")
		http.Error(w, `{"error":"daily_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(dailyRes{
		Date:           date,
		Key:            key,
		SharePath:      "/?key=" + key,
		CatalogVersion: s.dealer.Catalog.Version(),
	})
}
