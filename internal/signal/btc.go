package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// httpTimeout bounds every remote signal sample at a fixed 30s; it is not
// configurable.
const httpTimeout = 30 * time.Second

func newPooledHTTPClient() *http.Client {
	return &http.Client{
		Timeout: httpTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// btcPriceSampler samples the BTC/USD last price from blockchain.info's
// ticker endpoint, cached for 60s (spec §4.1: "btc_price (cached for 60 s)")
// since the upstream is rate-limited and every alert evaluation cycle would
// otherwise hit it independently.
type btcPriceSampler struct {
	client *http.Client
	url    string

	mu        sync.Mutex
	cachedAt  time.Time
	cachedVal float64
}

const btcTickerURL = "https://blockchain.info/ticker"
const btcCacheTTL = 60 * time.Second

func newBTCPriceSampler() *btcPriceSampler {
	return &btcPriceSampler{client: newPooledHTTPClient(), url: btcTickerURL}
}

func (s *btcPriceSampler) Sample(ctx context.Context) (float64, error) {
	s.mu.Lock()
	if !s.cachedAt.IsZero() && time.Since(s.cachedAt) < btcCacheTTL {
		val := s.cachedVal
		s.mu.Unlock()
		return val, nil
	}
	s.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("signal: btc_price: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("signal: btc_price: ticker returned %d", resp.StatusCode)
	}

	var payload struct {
		USD struct {
			Last float64 `json:"last"`
		} `json:"USD"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("signal: btc_price: decode: %w", err)
	}

	s.mu.Lock()
	s.cachedVal = payload.USD.Last
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return payload.USD.Last, nil
}

// btcStockToFlowSampler samples the stock-to-flow ratio from Glassnode,
// which requires an API key (spec §4.1/§6: "btc_stock_to_flow (requires an
// API key via configuration)" / GLASSNODE_API_KEY).
type btcStockToFlowSampler struct {
	client *http.Client
	apiKey string
}

const glassnodeStockToFlowURL = "https://api.glassnode.com/v1/metrics/indicators/stock_to_flow_ratio"

func newBTCStockToFlowSampler(apiKey string) *btcStockToFlowSampler {
	return &btcStockToFlowSampler{client: newPooledHTTPClient(), apiKey: apiKey}
}

func (s *btcStockToFlowSampler) Sample(ctx context.Context) (float64, error) {
	if s.apiKey == "" {
		return 0, fmt.Errorf("signal: btc_stock_to_flow: GLASSNODE_API_KEY not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, glassnodeStockToFlowURL, nil)
	if err != nil {
		return 0, err
	}
	q := req.URL.Query()
	q.Set("a", "BTC")
	q.Set("api_key", s.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("signal: btc_stock_to_flow: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("signal: btc_stock_to_flow: glassnode returned %d", resp.StatusCode)
	}

	var points []struct {
		Timestamp int64   `json:"t"`
		Value     float64 `json:"v"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return 0, fmt.Errorf("signal: btc_stock_to_flow: decode: %w", err)
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("signal: btc_stock_to_flow: empty response")
	}
	return points[len(points)-1].Value, nil
}

// RegisterBTCSignals registers btc_price and btc_stock_to_flow. glassnodeAPIKey
// may be empty; btc_stock_to_flow simply fails to sample until configured.
func RegisterBTCSignals(r *Registry, glassnodeAPIKey string) {
	r.Register("btc_price", newBTCPriceSampler())
	r.Register("btc_stock_to_flow", newBTCStockToFlowSampler(glassnodeAPIKey))
}
