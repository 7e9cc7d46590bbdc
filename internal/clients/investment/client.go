// Package investment wraps the investment platform's REST API. The client
// owns its JWT lifecycle: it authenticates lazily, treats tokens as expired
// one hour before their actual expiry, and retries a rejected request exactly
// once with a fresh token.
package investment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

const (
	sourceName = "investment"
	// tokenHeader carries the JWT on every authenticated call.
	tokenHeader = "X-Access-Token"
	// expiryMargin is how early a token is judged expired, relative to the
	// provider's actual lifetime. Conservative on purpose.
	expiryMargin = time.Hour
	// defaultTokenLifetime is assumed when the token's exp claim cannot be
	// read.
	defaultTokenLifetime = 24 * time.Hour
)

// Credentials authenticates against the provider. Either StaticToken is set,
// or the username/password/document triple is used to obtain a JWT.
type Credentials struct {
	Username    string
	Password    string
	Document    string
	StaticToken string
}

// Client calls the investment provider. Safe for use from one sync run at a
// time; the token cache is mutex-guarded in case the instance is shared.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates an investment client.
func NewClient(baseURL string, creds Credentials, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With(slog.String("client", sourceName)),
		now:        time.Now,
	}
}

type authRequest struct {
	Username string `json:"username"`
	Document string `json:"document"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

// authenticate obtains a fresh JWT and records its expiry, read from the
// token's exp claim. We are the client, not the issuer, so the claim is
// parsed without signature verification.
func (c *Client) authenticate(ctx context.Context) error {
	payload, err := json.Marshal(authRequest{
		Username: c.creds.Username,
		Document: c.creds.Document,
		Password: c.creds.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/authenticate", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewProviderError(sourceName, apperrors.KindTransient, 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewProviderError(sourceName, apperrors.KindTransient, resp.StatusCode, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.NewProviderError(sourceName, apperrors.KindAuth, resp.StatusCode,
			"authentication rejected by provider")
	}

	var ar authResponse
	if err := json.Unmarshal(body, &ar); err != nil || ar.Token == "" {
		return apperrors.NewProviderError(sourceName, apperrors.KindAuth, resp.StatusCode,
			"authentication response carried no token")
	}

	c.token = ar.Token
	c.tokenExpiry = c.readExpiry(ar.Token)
	c.logger.Debug("Authenticated against investment provider",
		slog.Time("token_expiry", c.tokenExpiry))
	return nil
}

func (c *Client) readExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return c.now().Add(defaultTokenLifetime)
}

// ensureToken makes sure a usable token is cached, re-authenticating when
// there is none or the cached one is judged expired (actual expiry minus the
// safety margin).
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if c.creds.StaticToken != "" {
		return c.creds.StaticToken, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || !c.now().Before(c.tokenExpiry.Add(-expiryMargin)) {
		if err := c.authenticate(ctx); err != nil {
			return "", err
		}
	}
	return c.token, nil
}

// invalidateToken drops the cached token so the next call re-authenticates.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

func (c *Client) doOnce(ctx context.Context, path string, query url.Values, token string) (int, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build investment request: %w", err)
	}
	req.Header.Set(tokenHeader, token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, apperrors.NewProviderError(sourceName, apperrors.KindTransient, 0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, apperrors.NewProviderError(sourceName, apperrors.KindTransient, resp.StatusCode, err.Error())
	}
	return resp.StatusCode, body, nil
}

// get performs an authenticated GET. On 401/403 it invalidates the cached
// token and retries exactly once with a freshly obtained one; a second
// rejection propagates as an auth error.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	status, body, err := c.doOnce(ctx, path, query, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.logger.Warn("Investment token rejected, re-authenticating once",
			slog.Int("status", status), slog.String("path", path))
		c.invalidateToken()
		token, err = c.ensureToken(ctx)
		if err != nil {
			return err
		}
		status, body, err = c.doOnce(ctx, path, query, token)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return apperrors.NewProviderError(sourceName, apperrors.KindAuth, status,
				"request rejected twice with a fresh token")
		}
	}

	if status < 200 || status > 299 {
		var eb struct {
			Message string `json:"message"`
		}
		msg := http.StatusText(status)
		if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		return apperrors.FromStatusCode(sourceName, status, msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewProviderError(sourceName, apperrors.KindValidation, status,
			fmt.Sprintf("unparseable response for %s: %v", path, err))
	}
	return nil
}

// GetCurrentUserAccounts lists the authenticated user's brokerage accounts.
func (c *Client) GetCurrentUserAccounts(ctx context.Context) ([]dto.InvestmentAccount, error) {
	var out struct {
		Accounts []dto.InvestmentAccount `json:"accounts"`
	}
	if err := c.get(ctx, "/accounts", nil, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

// GetAccount fetches one account's detail.
func (c *Client) GetAccount(ctx context.Context, accountNumber string) (*dto.InvestmentAccount, error) {
	var out dto.InvestmentAccount
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountNumber), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPortfolio returns the account's current holdings with cost basis.
func (c *Client) GetPortfolio(ctx context.Context, accountNumber string) ([]dto.InvestmentHolding, error) {
	var out struct {
		Holdings []dto.InvestmentHolding `json:"holdings"`
	}
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountNumber)+"/portfolio", nil, &out); err != nil {
		return nil, err
	}
	return out.Holdings, nil
}

type performancePointWire struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// GetPerformanceHistory returns the account's dated value points for the
// window. Points with a non-positive value or a date in the future are
// dropped before use; providers have been seen emitting both.
func (c *Client) GetPerformanceHistory(ctx context.Context, accountNumber string, start, end *time.Time) ([]dto.PerformancePoint, error) {
	query := url.Values{}
	if start != nil {
		query.Set("start", start.UTC().Format("2006-01-02"))
	}
	if end != nil {
		query.Set("end", end.UTC().Format("2006-01-02"))
	}
	var out struct {
		Points []performancePointWire `json:"points"`
	}
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountNumber)+"/performance", query, &out); err != nil {
		return nil, err
	}

	now := c.now()
	points := make([]dto.PerformancePoint, 0, len(out.Points))
	for _, p := range out.Points {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			c.logger.Warn("Dropping performance point with unparseable date",
				slog.String("date", p.Date), slog.String("account", accountNumber))
			continue
		}
		if p.Value.LessThanOrEqual(decimal.Zero) || date.After(now) {
			continue
		}
		points = append(points, dto.PerformancePoint{Date: date, Value: p.Value})
	}
	return points, nil
}

// GetNetContributions returns the most recent value in the provider's
// date-keyed map of net deposits-minus-withdrawals.
func (c *Client) GetNetContributions(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	var out struct {
		Contributions map[string]decimal.Decimal `json:"contributions"`
	}
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountNumber)+"/contributions", nil, &out); err != nil {
		return decimal.Zero, err
	}
	if len(out.Contributions) == 0 {
		return decimal.Zero, nil
	}

	keys := make([]string, 0, len(out.Contributions))
	for k := range out.Contributions {
		keys = append(keys, k)
	}
	// Keys are ISO dates, so lexical order is chronological order.
	sort.Strings(keys)
	return out.Contributions[keys[len(keys)-1]], nil
}
