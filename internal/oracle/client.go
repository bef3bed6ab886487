package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketsim/internal/market"
)

// Client talks to an external decision service. The simulation never depends
// on the oracle being up or well-behaved: every failure mode collapses to
// "no instructions this tick".
type Client struct {
	baseURL    string
	maxOrders  int
	httpClient *http.Client
}

// Request is the batch the worker sends once per tick.
type Request struct {
	Week      int                `json:"week"`
	Cash      float64            `json:"cash"`
	Holdings  map[string]float64 `json:"holdings"`
	Companies []market.Snapshot  `json:"companies"`
}

// Instruction is one order from the oracle, sized in whole currency units.
// The executing ledger converts the amount into shares at current price.
type Instruction struct {
	Ticker string  `json:"ticker"`
	Side   string  `json:"side"`
	Amount float64 `json:"amount"`
}

type response struct {
	Instructions []Instruction `json:"instructions"`
}

func New(baseURL string, maxOrders int) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxOrders: maxOrders,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Decide posts the tick snapshot and returns the oracle's orders. Transport
// errors, non-2xx statuses and malformed bodies all return an empty list and
// a describing error the caller may log but must not act on.
func (c *Client) Decide(ctx context.Context, req Request) ([]Instruction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode oracle request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/decide", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build oracle request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("oracle status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read oracle response: %w", err)
	}
	return ParseInstructions(raw, c.maxOrders), nil
}

// ParseInstructions decodes an oracle response body, dropping anything it
// cannot use: unknown sides, non-positive or fractional amounts, empty
// tickers. At most maxOrders instructions survive, in response order.
func ParseInstructions(raw []byte, maxOrders int) []Instruction {
	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	out := make([]Instruction, 0, len(resp.Instructions))
	for _, ins := range resp.Instructions {
		if len(out) >= maxOrders {
			break
		}
		ins.Ticker = strings.ToUpper(strings.TrimSpace(ins.Ticker))
		if ins.Ticker == "" {
			continue
		}
		side, ok := market.ParseSide(ins.Side)
		if !ok {
			continue
		}
		ins.Side = string(side)
		if ins.Amount <= 0 || ins.Amount != float64(int64(ins.Amount)) {
			continue
		}
		out = append(out, ins)
	}
	return out
}
