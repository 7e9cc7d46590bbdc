// Package payments is a thin typed wrapper over the payments/banking
// provider's REST API. Auth is a static bearer token; the activity feed is
// cursor-paginated.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/shopspring/decimal"
)

const (
	sourceName = "payments"
	// pageSize is the activity feed page size requested per cursor fetch.
	pageSize = 100
)

// Client calls the payments provider. Construct once and inject; it holds no
// per-request state beyond the shared http.Client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a payments client with the given static bearer token.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With(slog.String("client", sourceName)),
	}
}

// errorBody is the provider's error envelope on non-2xx responses.
type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build payments request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewProviderError(sourceName, apperrors.KindTransient, 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewProviderError(sourceName, apperrors.KindTransient, resp.StatusCode, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		return apperrors.FromStatusCode(sourceName, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewProviderError(sourceName, apperrors.KindValidation, resp.StatusCode,
			fmt.Sprintf("unparseable response for %s: %v", path, err))
	}
	return nil
}

// ListAccounts returns the user's accounts at the provider.
func (c *Client) ListAccounts(ctx context.Context) ([]dto.PaymentsAccount, error) {
	var out struct {
		Accounts []dto.PaymentsAccount `json:"accounts"`
	}
	if err := c.get(ctx, "/accounts", nil, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

// GetBalances returns the current balances for one account.
func (c *Client) GetBalances(ctx context.Context, accountID string) ([]dto.PaymentsBalance, error) {
	var out struct {
		Balances []dto.PaymentsBalance `json:"balances"`
	}
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID)+"/balances", nil, &out); err != nil {
		return nil, err
	}
	return out.Balances, nil
}

// GetActivities fetches the cursor-paginated activity feed for the window,
// looping until the server returns no next cursor. Items are concatenated in
// server order.
func (c *Client) GetActivities(ctx context.Context, accountID string, since, until time.Time) ([]dto.RawActivity, error) {
	var all []dto.RawActivity
	cursor := ""
	for {
		query := url.Values{}
		query.Set("since", since.UTC().Format(time.RFC3339))
		query.Set("until", until.UTC().Format(time.RFC3339))
		query.Set("size", fmt.Sprintf("%d", pageSize))
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var page dto.ActivityPage
		if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID)+"/activities", query, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	c.logger.Debug("Fetched activity feed",
		slog.String("account_id", accountID), slog.Int("items", len(all)))
	return all, nil
}

// GetExchangeRate returns the provider's current rate for a currency pair.
func (c *Client) GetExchangeRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("from", from)
	query.Set("to", to)
	var out struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := c.get(ctx, "/exchange-rates", query, &out); err != nil {
		return decimal.Zero, err
	}
	if out.Rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperrors.NewProviderError(sourceName, apperrors.KindValidation, 0,
			fmt.Sprintf("non-positive exchange rate for %s/%s", from, to))
	}
	return out.Rate, nil
}
