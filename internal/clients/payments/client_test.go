package payments_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finsight-app/finsight_backend/internal/apperrors"
	"github.com/finsight-app/finsight_backend/internal/clients/payments"
	"github.com/finsight-app/finsight_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestListAccounts_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, map[string]any{
			"accounts": []dto.PaymentsAccount{{ID: "ext-1", Name: "Main", CurrencyCode: "EUR"}},
		})
	}))
	defer srv.Close()

	client := payments.NewClient(srv.URL, "secret-token", slog.Default())
	accounts, err := client.ListAccounts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	require.Len(t, accounts, 1)
	assert.Equal(t, "ext-1", accounts[0].ID)
}

func TestGetActivities_FollowsCursorsInOrder(t *testing.T) {
	var cursorsSeen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/acc-1/activities", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("since"))
		assert.NotEmpty(t, r.URL.Query().Get("until"))

		cursor := r.URL.Query().Get("cursor")
		cursorsSeen = append(cursorsSeen, cursor)
		switch cursor {
		case "":
			writeJSON(t, w, http.StatusOK, dto.ActivityPage{
				Items: []dto.RawActivity{
					{ID: "a1", Type: "CARD_PAYMENT", Amount: decimal.RequireFromString("-10.00")},
					{ID: "a2", Type: "SALARY", Amount: decimal.RequireFromString("2500.00")},
				},
				NextCursor: "page-2",
			})
		case "page-2":
			writeJSON(t, w, http.StatusOK, dto.ActivityPage{
				Items: []dto.RawActivity{
					{ID: "a3", Type: "PIX_OUT", Amount: decimal.RequireFromString("-5.00")},
				},
			})
		default:
			t.Fatalf("unexpected cursor %q", cursor)
		}
	}))
	defer srv.Close()

	client := payments.NewClient(srv.URL, "token", slog.Default())
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	activities, err := client.GetActivities(context.Background(), "acc-1", since, until)

	require.NoError(t, err)
	require.Len(t, activities, 3)
	assert.Equal(t, "a1", activities[0].ID)
	assert.Equal(t, "a2", activities[1].ID)
	assert.Equal(t, "a3", activities[2].ID)
	assert.Equal(t, []string{"", "page-2"}, cursorsSeen)
}

func TestGetActivities_MidPageFailureReturnsError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			writeJSON(t, w, http.StatusOK, dto.ActivityPage{
				Items:      []dto.RawActivity{{ID: "a1"}},
				NextCursor: "page-2",
			})
			return
		}
		writeJSON(t, w, http.StatusServiceUnavailable, map[string]string{"message": "maintenance window"})
	}))
	defer srv.Close()

	client := payments.NewClient(srv.URL, "token", slog.Default())
	activities, err := client.GetActivities(context.Background(), "acc-1", time.Now().Add(-time.Hour), time.Now())

	require.Error(t, err)
	assert.Nil(t, activities)
	assert.ErrorIs(t, err, apperrors.ErrTransient)
	assert.Contains(t, err.Error(), "maintenance window")
}

func TestGet_ErrorKindsFollowStatusCode(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, apperrors.ErrAuth},
		{http.StatusTooManyRequests, apperrors.ErrRateLimit},
		{http.StatusNotFound, apperrors.ErrNotFound},
		{http.StatusUnprocessableEntity, apperrors.ErrValidation},
		{http.StatusBadGateway, apperrors.ErrTransient},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, tc.status, map[string]string{"message": "nope"})
		}))

		client := payments.NewClient(srv.URL, "token", slog.Default())
		_, err := client.ListAccounts(context.Background())

		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		srv.Close()
	}
}

func TestGetExchangeRate_RejectsNonPositiveRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		assert.Equal(t, "EUR", r.URL.Query().Get("to"))
		writeJSON(t, w, http.StatusOK, map[string]string{"rate": "0"})
	}))
	defer srv.Close()

	client := payments.NewClient(srv.URL, "token", slog.Default())
	_, err := client.GetExchangeRate(context.Background(), "USD", "EUR")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestGetExchangeRate_ReturnsRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"rate": "0.9182"})
	}))
	defer srv.Close()

	client := payments.NewClient(srv.URL, "token", slog.Default())
	rate, err := client.GetExchangeRate(context.Background(), "USD", "EUR")

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.9182")))
}
