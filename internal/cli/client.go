package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketsim/internal/market"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type MarketState struct {
	Macro           market.Macro `json:"macro"`
	ImpliedMultiple float64      `json:"implied_multiple"`
}

type TradeResult struct {
	Ticker   string  `json:"ticker"`
	Impact   float64 `json:"impact"`
	Price    float64 `json:"price"`
	Bankrupt bool    `json:"bankrupt"`
}

func (c *Client) Market(ctx context.Context) (MarketState, error) {
	var out MarketState
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/market", nil, &out)
	return out, err
}

func (c *Client) Sectors(ctx context.Context) ([]market.Sector, error) {
	var out struct {
		Sectors []market.Sector `json:"sectors"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/sectors", nil, &out)
	return out.Sectors, err
}

func (c *Client) Companies(ctx context.Context) ([]market.Snapshot, error) {
	var out struct {
		Companies []market.Snapshot `json:"companies"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/companies", nil, &out)
	return out.Companies, err
}

func (c *Client) Company(ctx context.Context, ticker string) (market.Snapshot, error) {
	var out market.Snapshot
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/companies/"+url.PathEscape(ticker), nil, &out)
	return out, err
}

func (c *Client) History(ctx context.Context, ticker string) ([]market.HistoryPoint, error) {
	var out struct {
		History []market.HistoryPoint `json:"history"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/companies/"+url.PathEscape(ticker)+"/history", nil, &out)
	return out.History, err
}

func (c *Client) Events(ctx context.Context, ticker string) ([]market.Event, error) {
	var out struct {
		Events []market.Event `json:"events"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/companies/"+url.PathEscape(ticker)+"/events", nil, &out)
	return out.Events, err
}

func (c *Client) Tick(ctx context.Context, weeks int) (int, error) {
	var out struct {
		Week int `json:"week"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/ticks", map[string]any{"weeks": weeks}, &out)
	return out.Week, err
}

func (c *Client) Trade(ctx context.Context, ticker, side string, shares float64) (TradeResult, error) {
	var out TradeResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/trades", map[string]any{
		"ticker": ticker,
		"side":   side,
		"shares": shares,
	}, &out)
	return out, err
}

func (c *Client) ConsumeSplit(ctx context.Context, ticker string) (float64, error) {
	var out struct {
		Factor float64 `json:"factor"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/companies/"+url.PathEscape(ticker)+"/split/consume", nil, &out)
	return out.Factor, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
