package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketsim/internal/config"
	"marketsim/internal/market"
)

func testServer(t *testing.T) (*Server, *market.Universe) {
	t.Helper()
	u := market.New(market.Config{Seed: 314, Companies: 8, WarmupWeeks: 24})
	return New(config.APIConfig{}, nil, u), u
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status %d", rec.Code)
	}
}

func TestListCompanies(t *testing.T) {
	s, u := testServer(t)
	rec := do(t, s, http.MethodGet, "/v1/companies", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Companies []market.Snapshot `json:"companies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Companies) != len(u.Companies) {
		t.Fatalf("want %d companies, got %d", len(u.Companies), len(out.Companies))
	}
}

func TestCompanyDetailAndMisses(t *testing.T) {
	s, u := testServer(t)
	ticker := u.Companies[0].Ticker

	rec := do(t, s, http.MethodGet, "/v1/companies/"+ticker, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status %d", rec.Code)
	}
	var snap market.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Ticker != ticker {
		t.Fatalf("got ticker %q want %q", snap.Ticker, ticker)
	}

	for _, path := range []string{
		"/v1/companies/ZZZZ99",
		"/v1/companies/ZZZZ99/history",
		"/v1/companies/ZZZZ99/events",
	} {
		if rec := do(t, s, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: want 404, got %d", path, rec.Code)
		}
	}
}

func TestCompanyHistory(t *testing.T) {
	s, u := testServer(t)
	rec := do(t, s, http.MethodGet, "/v1/companies/"+u.Companies[0].Ticker+"/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out struct {
		History []market.HistoryPoint `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.History) != 24 {
		t.Fatalf("want 24 warmup points, got %d", len(out.History))
	}
}

func TestTickEndpoint(t *testing.T) {
	s, u := testServer(t)
	before := u.Week()

	rec := do(t, s, http.MethodPost, "/v1/ticks", `{"weeks":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Week int `json:"week"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Week != before+3 {
		t.Fatalf("want week %d, got %d", before+3, out.Week)
	}

	if rec := do(t, s, http.MethodPost, "/v1/ticks", `{"weeks":0}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("weeks=0 should be rejected, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/v1/ticks", `{"weeks":1,"extra":true}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown fields should be rejected, got %d", rec.Code)
	}
}

func TestTradeEndpoint(t *testing.T) {
	s, u := testServer(t)
	c := u.Companies[0]
	before := c.Price

	rec := do(t, s, http.MethodPost, "/v1/trades",
		`{"ticker":"`+c.Ticker+`","side":"buy","shares":50000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Impact float64 `json:"impact"`
		Price  float64 `json:"price"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Impact <= 0 || out.Price <= before {
		t.Fatalf("buy should lift the price: impact=%v price=%v before=%v", out.Impact, out.Price, before)
	}

	if rec := do(t, s, http.MethodPost, "/v1/trades", `{"ticker":"`+c.Ticker+`","side":"hold","shares":1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad side should be rejected, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/v1/trades", `{"ticker":"NOPE","side":"buy","shares":1}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown ticker should 404, got %d", rec.Code)
	}
}

func TestConsumeSplitEndpoint(t *testing.T) {
	s, u := testServer(t)
	c := u.Companies[0]
	c.PendingSplitFactor = 4

	rec := do(t, s, http.MethodPost, "/v1/companies/"+c.Ticker+"/split/consume", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var out struct {
		Factor float64 `json:"factor"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Factor != 4 {
		t.Fatalf("want factor 4, got %v", out.Factor)
	}

	rec = do(t, s, http.MethodPost, "/v1/companies/"+c.Ticker+"/split/consume", "")
	json.Unmarshal(rec.Body.Bytes(), &out)
	if out.Factor != 1 {
		t.Fatalf("second consume should return 1, got %v", out.Factor)
	}
}
