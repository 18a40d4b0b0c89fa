// Package mexc talks to the MEXC spot API for candles and the MEXC
// contract API for positions and orders. Private calls are signed with
// HMAC-SHA256 over the canonical url-encoded query, with a millisecond
// timestamp to prevent replay.
package mexc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"band-trading-bot/internal/api"
	"band-trading-bot/internal/faults"
	"band-trading-bot/internal/interfaces"
	"band-trading-bot/internal/types"
)

const (
	defaultSpotBaseURL     = "https://api.mexc.com"
	defaultContractBaseURL = "https://contract.mexc.com"

	// Contract API enums.
	sideOpenLong   = 1
	sideCloseShort = 2
	sideOpenShort  = 3
	sideCloseLong  = 4

	orderTypeMarket     = 1
	orderTypeStopMarket = 5
	orderTypeTakeProfit = 6

	openTypeCross      = 2
	positionTypeHedge  = 2

	// Simulated positions in DRY_RUN expire so reconciliation can be
	// observed without a live venue closing them.
	simPositionTTL = 15 * time.Minute
)

type Params struct {
	Mode            string // DRY_RUN or LIVE
	APIKey          string
	APISecret       string
	SpotBaseURL     string
	ContractBaseURL string
	Retry           *api.RetryConfig
}

type Client struct {
	p         Params
	api       *api.Client
	simulated map[string]time.Time
}

var (
	_ interfaces.MarketData = (*Client)(nil)
	_ interfaces.Exchange   = (*Client)(nil)
)

func NewClient(p Params) (*Client, error) {
	if p.Mode == "LIVE" && (p.APIKey == "" || p.APISecret == "") {
		return nil, faults.Auth("mexc.new", errors.New("missing MEXC API key/secret"))
	}
	if p.SpotBaseURL == "" {
		p.SpotBaseURL = defaultSpotBaseURL
	}
	if p.ContractBaseURL == "" {
		p.ContractBaseURL = defaultContractBaseURL
	}
	if p.Retry == nil {
		p.Retry = api.DefaultRetryConfig()
	}

	return &Client{
		p: p,
		api: api.NewClient(
			api.WithTimeout(10*time.Second),
			api.WithHeader("User-Agent", "Mozilla/5.0"),
			api.WithLogging(true),
		),
		simulated: make(map[string]time.Time),
	}, nil
}

func (c *Client) dryRun() bool { return c.p.Mode == "DRY_RUN" }

// Candles fetches spot klines. The last element is the still-forming
// candle; callers drop it before computing indicators.
func (c *Client) Candles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	req := api.NewRequest(http.MethodGet, c.p.SpotBaseURL+"/api/v3/klines?"+params.Encode()).
		WithContext(ctx)
	resp, err := c.api.DoWithRetry(req, c.p.Retry)
	if err != nil {
		return nil, faults.Transient("mexc.candles", err)
	}

	var raw [][]interface{}
	if err := resp.ParseJSON(&raw); err != nil {
		return nil, faults.BadData("mexc.candles", err)
	}
	if len(raw) == 0 {
		return nil, faults.BadData("mexc.candles", errors.New("empty kline response"))
	}

	candles := make([]types.Candle, 0, len(raw))
	var prevTs int64
	for _, k := range raw {
		if len(k) < 6 {
			return nil, faults.BadData("mexc.candles", fmt.Errorf("kline row has %d fields", len(k)))
		}
		ts, ok := k[0].(float64)
		if !ok {
			return nil, faults.BadData("mexc.candles", errors.New("kline open time is not numeric"))
		}
		var fields [5]float64
		for j := range fields {
			f, err := parseFloat(k[j+1])
			if err != nil {
				return nil, faults.BadData("mexc.candles", fmt.Errorf("kline field %d: %w", j+1, err))
			}
			fields[j] = f
		}
		candle := types.Candle{
			Ts:    int64(ts),
			Open:  fields[0],
			High:  fields[1],
			Low:   fields[2],
			Close: fields[3],
			Vol:   fields[4],
		}
		if candle.Ts <= prevTs {
			return nil, faults.BadData("mexc.candles", errors.New("kline series not increasing by open time"))
		}
		prevTs = candle.Ts
		candles = append(candles, candle)
	}
	return candles, nil
}

func (c *Client) HasOpenPosition(ctx context.Context, contract string) (bool, error) {
	if c.dryRun() {
		opened, ok := c.simulated[contract]
		if ok && time.Since(opened) > simPositionTTL {
			delete(c.simulated, contract)
			return false, nil
		}
		return ok, nil
	}

	q := c.signedQuery(url.Values{})
	resp, err := c.api.GET(ctx, c.p.ContractBaseURL+"/api/v1/private/position/list?"+q.Encode(), c.authHeaders())
	if err != nil {
		return false, faults.Transient("mexc.positions", err)
	}

	var out struct {
		Success bool `json:"success"`
		Data    []struct {
			Symbol       string  `json:"symbol"`
			PositionSize float64 `json:"positionSize"`
		} `json:"data"`
	}
	if err := resp.ParseJSON(&out); err != nil {
		return false, faults.BadData("mexc.positions", err)
	}
	if !out.Success {
		return false, faults.Rejected("mexc.positions", errors.New(resp.String()))
	}

	for _, pos := range out.Data {
		if pos.Symbol == contract && pos.PositionSize != 0 {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) SubmitMarketOrder(ctx context.Context, contract string, side types.Side, qty float64) (float64, error) {
	if c.dryRun() {
		c.simulated[contract] = time.Now()
		return 0, nil
	}

	openSide := sideOpenLong
	if side == types.SideShort {
		openSide = sideOpenShort
	}
	params := url.Values{}
	params.Set("symbol", contract)
	params.Set("price", "0")
	params.Set("vol", formatQty(qty))
	params.Set("side", strconv.Itoa(openSide))
	params.Set("type", strconv.Itoa(orderTypeMarket))
	params.Set("openType", strconv.Itoa(openTypeCross))
	params.Set("positionType", strconv.Itoa(positionTypeHedge))

	resp, err := c.submitOrder(ctx, params)
	if err != nil {
		return 0, err
	}

	var out struct {
		Success bool `json:"success"`
		Data    struct {
			Price float64 `json:"price"`
		} `json:"data"`
	}
	if err := resp.ParseJSON(&out); err != nil {
		return 0, faults.BadData("mexc.order", err)
	}
	if !out.Success {
		return 0, faults.Rejected("mexc.order", errors.New(resp.String()))
	}
	return out.Data.Price, nil
}

func (c *Client) SubmitStopLoss(ctx context.Context, contract string, side types.Side, trigger, qty float64) error {
	return c.submitConditional(ctx, contract, side, orderTypeStopMarket, trigger, qty)
}

func (c *Client) SubmitTakeProfit(ctx context.Context, contract string, side types.Side, trigger, qty float64) error {
	return c.submitConditional(ctx, contract, side, orderTypeTakeProfit, trigger, qty)
}

// submitConditional places a conditional close order against the given
// position side (hedge mode requires the explicit close-side tag).
func (c *Client) submitConditional(ctx context.Context, contract string, side types.Side, orderType int, trigger, qty float64) error {
	if c.dryRun() {
		return nil
	}

	closeSide := sideCloseLong
	if side == types.SideShort {
		closeSide = sideCloseShort
	}
	params := url.Values{}
	params.Set("symbol", contract)
	params.Set("vol", formatQty(qty))
	params.Set("side", strconv.Itoa(closeSide))
	params.Set("type", strconv.Itoa(orderType))
	params.Set("triggerPrice", strconv.FormatFloat(trigger, 'f', 6, 64))
	params.Set("openType", strconv.Itoa(openTypeCross))
	params.Set("positionType", strconv.Itoa(positionTypeHedge))

	resp, err := c.submitOrder(ctx, params)
	if err != nil {
		return err
	}

	var out struct {
		Success bool `json:"success"`
	}
	if err := resp.ParseJSON(&out); err != nil {
		return faults.BadData("mexc.conditional", err)
	}
	if !out.Success {
		return faults.Rejected("mexc.conditional", errors.New(resp.String()))
	}
	return nil
}

func (c *Client) submitOrder(ctx context.Context, params url.Values) (*api.Response, error) {
	q := c.signedQuery(params)
	req := api.NewRequest(http.MethodPost, c.p.ContractBaseURL+"/api/v1/private/order/submit?"+q.Encode()).
		WithContext(ctx)
	for k, v := range c.authHeaders() {
		req.WithHeader(k, v)
	}
	resp, err := c.api.Do(req)
	if err != nil {
		return nil, faults.Transient("mexc.order", err)
	}
	return resp, nil
}

// Ping measures reachability of the contract API.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	_, err := c.api.GET(ctx, c.p.ContractBaseURL+"/api/v1/contract/ping")
	if err != nil {
		return 0, faults.Transient("mexc.ping", err)
	}
	return time.Since(start), nil
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{"ApiKey": c.p.APIKey}
}

// signedQuery adds the timestamp and signature to params. url.Values
// encodes keys in sorted order, which is the canonical form the
// signature is computed over.
func (c *Client) signedQuery(params url.Values) url.Values {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("signature", Sign(c.p.APISecret, params))
	return params
}

func formatQty(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

// parseFloat accepts the two encodings the kline payload uses for
// numbers. Anything else is malformed data, not a zero.
func parseFloat(val interface{}) (float64, error) {
	switch v := val.(type) {
	case string:
		return strconv.ParseFloat(v, 64)
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("unexpected field type %T", val)
	}
}
