package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"marketsim/internal/config"
	"marketsim/internal/market"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes one universe over HTTP. The universe itself is not
// concurrency-safe, so every handler that touches it holds s.mu; the optional
// background ticker goes through the same mutex.
type Server struct {
	cfg config.APIConfig
	log *slog.Logger
	mux *chi.Mux

	mu       sync.Mutex
	universe *market.Universe
}

func New(cfg config.APIConfig, logger *slog.Logger, u *market.Universe) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		mux:      chi.NewRouter(),
		universe: u,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// RunTicker advances the universe on a fixed interval until stop is closed.
// Used when the server binary is also the clock.
func (s *Server) RunTicker(every time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.mu.Lock()
			s.universe.Tick()
			week := s.universe.Week()
			s.mu.Unlock()
			s.log.Info("tick", "week", week)
		}
	}
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/market", s.handleMarket)
		r.Get("/sectors", s.handleSectors)
		r.Get("/companies", s.handleCompanies)
		r.Get("/companies/{ticker}", s.handleCompanyDetail)
		r.Get("/companies/{ticker}/history", s.handleCompanyHistory)
		r.Get("/companies/{ticker}/events", s.handleCompanyEvents)
		r.Post("/companies/{ticker}/split/consume", s.handleConsumeSplit)
		r.Post("/ticks", s.handleTick)
		r.Post("/trades", s.handleTrade)
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	macro := *s.universe.Macro
	multiple := s.universe.Macro.ImpliedMarketMultiple()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"macro":            macro,
		"implied_multiple": multiple,
	})
}

func (s *Server) handleSectors(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]market.Sector, 0, len(s.universe.Sectors))
	for _, sec := range s.universe.Sectors {
		out = append(out, *sec)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"sectors": out})
}

func (s *Server) handleCompanies(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := s.universe.Snapshots()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"companies": out})
}

func (s *Server) handleCompanyDetail(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap, ok := s.universe.SnapshotOf(chi.URLParam(r, "ticker"))
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown ticker")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCompanyHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	c, ok := s.universe.Company(chi.URLParam(r, "ticker"))
	var history []market.HistoryPoint
	if ok {
		history = append(history, c.History...)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown ticker")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleCompanyEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	c, ok := s.universe.Company(chi.URLParam(r, "ticker"))
	var events []market.Event
	if ok {
		events = append(events, c.Events...)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown ticker")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleConsumeSplit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	c, ok := s.universe.Company(chi.URLParam(r, "ticker"))
	var factor float64
	if ok {
		factor = c.ConsumeSplitFactor()
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown ticker")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"factor": factor})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	in := struct {
		Weeks int `json:"weeks"`
	}{Weeks: 1}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if in.Weeks < 1 || in.Weeks > 1000 {
		writeError(w, http.StatusBadRequest, "weeks must be in [1,1000]")
		return
	}
	s.mu.Lock()
	s.universe.TickN(in.Weeks)
	week := s.universe.Week()
	s.mu.Unlock()
	s.log.Info("manual tick", "weeks", in.Weeks, "week", week)
	writeJSON(w, http.StatusOK, map[string]any{"week": week})
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Ticker string  `json:"ticker"`
		Side   string  `json:"side"`
		Shares float64 `json:"shares"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	side, ok := market.ParseSide(in.Side)
	if !ok {
		writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}
	if in.Shares <= 0 {
		writeError(w, http.StatusBadRequest, "shares must be positive")
		return
	}

	s.mu.Lock()
	c, found := s.universe.Company(in.Ticker)
	var impact, price float64
	var bankrupt bool
	if found {
		impact = market.ApplyTradeImpact(c, in.Shares, side)
		price = c.Price
		bankrupt = c.Bankrupt
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "unknown ticker")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ticker":   strings.ToUpper(strings.TrimSpace(in.Ticker)),
		"impact":   impact,
		"price":    price,
		"bankrupt": bankrupt,
	})
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
