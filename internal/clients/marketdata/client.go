// Package marketdata wraps the market-data provider's query API. The
// provider answers HTTP 200 even on logical failure, so every response body
// is inspected for embedded error/rate-limit fields. All outbound calls pass
// through one shared min-interval gate: bursts serialize instead of erroring.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	sourceName = "marketdata"
	// DefaultMinInterval is the minimum spacing between outbound requests.
	DefaultMinInterval = 1100 * time.Millisecond
	// maxSearchResults caps SearchSymbols output.
	maxSearchResults = 10
	// nativeQuoteCurrency is the currency stock quotes arrive in.
	nativeQuoteCurrency = "USD"
	// gateKey is the single limiter bucket shared by every call from this
	// client instance.
	gateKey = "outbound"
)

// Client calls the market-data provider. The limiter is owned by the client
// instance; sharing one instance process-wide shares the gate across
// concurrently-scheduled requests.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	gate        *limiter.Limiter
	minInterval time.Duration
	logger      *slog.Logger
}

// NewClient creates a market-data client with its own min-interval gate.
func NewClient(baseURL, apiKey string, minInterval time.Duration, logger *slog.Logger) *Client {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	gate := limiter.New(memory.NewStore(), limiter.Rate{Period: minInterval, Limit: 1})
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		gate:        gate,
		minInterval: minInterval,
		logger:      logger.With(slog.String("client", sourceName)),
	}
}

// waitTurn blocks until the shared gate admits one more request.
func (c *Client) waitTurn(ctx context.Context) error {
	for {
		lctx, err := c.gate.Get(ctx, gateKey)
		if err != nil {
			return fmt.Errorf("limiter gate failed: %w", err)
		}
		if !lctx.Reached {
			return nil
		}
		wait := time.Until(time.Unix(lctx.Reset, 0))
		if wait <= 0 {
			wait = c.minInterval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// query performs one gated GET against the provider's query endpoint and
// returns the raw JSON object, after checking it for embedded logical errors.
func (c *Client) query(ctx context.Context, params url.Values) (map[string]json.RawMessage, error) {
	if err := c.waitTurn(ctx); err != nil {
		return nil, err
	}

	params.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build market-data request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderError(sourceName, apperrors.KindTransient, 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewProviderError(sourceName, apperrors.KindTransient, resp.StatusCode, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.FromStatusCode(sourceName, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.NewProviderError(sourceName, apperrors.KindValidation, resp.StatusCode,
			fmt.Sprintf("unparseable response: %v", err))
	}
	if err := checkLogicalError(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// checkLogicalError inspects a 200 body for the provider's conventional
// error fields. "Note" and "Information" signal throttling; "Error Message"
// signals a bad request or unknown symbol.
func checkLogicalError(payload map[string]json.RawMessage) error {
	readString := func(key string) string {
		raw, ok := payload[key]
		if !ok {
			return ""
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return ""
		}
		return s
	}

	if msg := readString("Note"); msg != "" {
		return apperrors.NewProviderError(sourceName, apperrors.KindRateLimit, 0, "rate limit: "+msg)
	}
	if msg := readString("Information"); msg != "" {
		return apperrors.NewProviderError(sourceName, apperrors.KindRateLimit, 0, "rate limit: "+msg)
	}
	if msg := readString("Error Message"); msg != "" {
		return apperrors.NewProviderError(sourceName, apperrors.KindNotFound, 0, msg)
	}
	return nil
}

// getForexRate fetches the provider's own forex rate for a pair. Also gated.
func (c *Client) getForexRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("function", "CURRENCY_EXCHANGE_RATE")
	params.Set("from_currency", from)
	params.Set("to_currency", to)
	payload, err := c.query(ctx, params)
	if err != nil {
		return decimal.Zero, err
	}

	raw, ok := payload["Realtime Currency Exchange Rate"]
	if !ok {
		return decimal.Zero, apperrors.NewProviderError(sourceName, apperrors.KindNotFound, 0,
			fmt.Sprintf("no exchange rate for %s/%s", from, to))
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return decimal.Zero, apperrors.NewProviderError(sourceName, apperrors.KindValidation, 0, err.Error())
	}
	rate, err := decimal.NewFromString(fields["5. Exchange Rate"])
	if err != nil || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperrors.NewProviderError(sourceName, apperrors.KindValidation, 0,
			fmt.Sprintf("bad exchange rate for %s/%s", from, to))
	}
	return rate, nil
}

// GetStockQuote returns the current quote for a symbol. When targetCurrency
// is set and differs from the quote's native currency, the price is converted
// post-fetch via the provider's forex endpoint.
func (c *Client) GetStockQuote(ctx context.Context, symbol, targetCurrency string) (*dto.Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	payload, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	raw, ok := payload["Global Quote"]
	if !ok {
		return nil, apperrors.NewProviderError(sourceName, apperrors.KindNotFound, 0,
			fmt.Sprintf("no quote for symbol %s", symbol))
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperrors.NewProviderError(sourceName, apperrors.KindValidation, 0, err.Error())
	}
	if len(fields) == 0 || fields["05. price"] == "" {
		return nil, apperrors.NewProviderError(sourceName, apperrors.KindNotFound, 0,
			fmt.Sprintf("no quote for symbol %s", symbol))
	}

	price, err := decimal.NewFromString(fields["05. price"])
	if err != nil {
		return nil, apperrors.NewProviderError(sourceName, apperrors.KindValidation, 0,
			fmt.Sprintf("unparseable price for %s", symbol))
	}
	changePercent := parsePercent(fields["10. change percent"])

	quote := &dto.Quote{
		Symbol:        symbol,
		Price:         price,
		CurrencyCode:  nativeQuoteCurrency,
		ChangePercent: changePercent,
		AsOf:          time.Now().UTC(),
	}

	if targetCurrency != "" && targetCurrency != quote.CurrencyCode {
		rate, err := c.getForexRate(ctx, quote.CurrencyCode, targetCurrency)
		if err != nil {
			return nil, err
		}
		quote.Price = quote.Price.Mul(rate)
		quote.CurrencyCode = targetCurrency
	}
	return quote, nil
}

// GetCryptoQuote returns the current price of a crypto symbol in toCurrency.
func (c *Client) GetCryptoQuote(ctx context.Context, symbol, toCurrency string) (*dto.Quote, error) {
	rate, err := c.getForexRate(ctx, symbol, toCurrency)
	if err != nil {
		return nil, err
	}
	return &dto.Quote{
		Symbol:       symbol,
		Price:        rate,
		CurrencyCode: toCurrency,
		AsOf:         time.Now().UTC(),
	}, nil
}

// SearchSymbols returns up to maxSearchResults matches for the keywords.
func (c *Client) SearchSymbols(ctx context.Context, keywords string) ([]dto.SymbolMatch, error) {
	params := url.Values{}
	params.Set("function", "SYMBOL_SEARCH")
	params.Set("keywords", keywords)
	payload, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	raw, ok := payload["bestMatches"]
	if !ok {
		return nil, nil
	}
	var matches []map[string]string
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, apperrors.NewProviderError(sourceName, apperrors.KindValidation, 0, err.Error())
	}

	out := make([]dto.SymbolMatch, 0, maxSearchResults)
	for _, m := range matches {
		if len(out) == maxSearchResults {
			break
		}
		out = append(out, dto.SymbolMatch{
			Symbol:       m["1. symbol"],
			Name:         m["2. name"],
			Region:       m["4. region"],
			CurrencyCode: m["8. currency"],
		})
	}
	return out, nil
}

// GetPriceHistory returns the symbol's daily closes, oldest first.
func (c *Client) GetPriceHistory(ctx context.Context, symbol string) ([]dto.PricePoint, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	payload, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	raw, ok := payload["Time Series (Daily)"]
	if !ok {
		return nil, apperrors.NewProviderError(sourceName, apperrors.KindNotFound, 0,
			fmt.Sprintf("no price history for symbol %s", symbol))
	}
	var series map[string]map[string]string
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, apperrors.NewProviderError(sourceName, apperrors.KindValidation, 0, err.Error())
	}

	points := make([]dto.PricePoint, 0, len(series))
	for dateStr, fields := range series {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		closePrice, err := decimal.NewFromString(fields["4. close"])
		if err != nil {
			continue
		}
		points = append(points, dto.PricePoint{Date: date, Close: closePrice})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func parsePercent(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	if s[len(s)-1] == '%' {
		s = s[:len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
