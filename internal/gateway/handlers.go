package gateway

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stocktracker/internal/model"
	"stocktracker/internal/stock"
	"stocktracker/internal/store/sqlite"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "stocktracker",
		"docs":    "/api/stocks/{symbol}/price, /api/stocks/{symbol}/technical, /ws/{symbol}",
	})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	q, err := s.svc.CurrentPrice(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	series, err := s.svc.History(r.Context(), chi.URLParam(r, "symbol"), r.URL.Query().Get("range"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleRecorded(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	points, err := s.svc.RecentPrices(r.Context(), chi.URLParam(r, "symbol"), limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if points == nil {
		points = []sqlite.PricePoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleTechnical(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.TechnicalReport(r.Context(), chi.URLParam(r, "symbol"), r.URL.Query().Get("range"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleFundamental(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.FundamentalReport(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Trending(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query parameter q"})
		return
	}
	results, err := s.svc.Search(r.Context(), query)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.MarketStatus())
}

func (s *Server) handleWatchlistGet(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Watchlist(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	sym, err := stock.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	entry, err := s.store.AddToWatchlist(r.Context(), sym)
	if errors.Is(err, sqlite.ErrDuplicate) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "symbol already in watchlist"})
		return
	}
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	sym, err := stock.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	err = s.store.RemoveFromWatchlist(r.Context(), sym)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "symbol not in watchlist"})
		return
	}
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "symbol": sym})
}

type alertRequest struct {
	Symbol      string  `json:"symbol"`
	Type        string  `json:"alert_type"`
	TargetValue float64 `json:"target_value"`
}

func (s *Server) handleAlertsGet(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.store.Alerts(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleAlertCreate(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	sym, err := stock.NormalizeSymbol(req.Symbol)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if req.Type != model.AlertPriceAbove && req.Type != model.AlertPriceBelow {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "alert_type must be price_above or price_below"})
		return
	}
	if req.TargetValue <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target_value must be positive"})
		return
	}

	alert, err := s.store.CreateAlert(r.Context(), sym, req.Type, req.TargetValue)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleAlertDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid alert id"})
		return
	}
	err = s.store.DeleteAlert(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "alert not found"})
		return
	}
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
