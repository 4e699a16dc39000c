package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileBody struct {
	ID                   string          `json:"id"`
	Status               string          `json:"status"`
	CurrentBalance       decimal.Decimal `json:"current_balance"`
	TotalWithdrawnAmount decimal.Decimal `json:"total_withdrawn_amount"`
	RemainingBalance     decimal.Decimal `json:"remaining_balance"`
	PrePlanned           decimal.Decimal `json:"pre_planned_deposit_amount"`
	CarriedFromID        *string         `json:"carried_from_id"`
	TransactionCount     int64           `json:"transaction_count"`
}

func newProfile(t *testing.T, h *harness, carryForward bool) string {
	t.Helper()
	client := h.created("/api/v1/profiler/clients", map[string]any{"name": "Jane"})
	bank := h.created("/api/v1/profiler/banks", map[string]any{"bank_name": "Northwind"})
	return h.created("/api/v1/profiler/profiles", map[string]any{
		"client_id":                  client,
		"bank_id":                    bank,
		"pre_planned_deposit_amount": 1000,
		"carry_forward_enabled":      carryForward,
	})
}

func TestProfilerTransactionHandler_Withdrawal(t *testing.T) {
	h := newHarness(t)
	profile := newProfile(t, h, false)

	w := h.do(http.MethodPost, "/api/v1/profiler/transactions", map[string]any{
		"profile_id":                  profile,
		"transaction_type":            "withdraw",
		"amount":                      200,
		"withdraw_charges_percentage": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := dataOf[struct {
		ID                    string          `json:"id"`
		ClientName            string          `json:"client_name"`
		BankName              string          `json:"bank_name"`
		WithdrawChargesAmount decimal.Decimal `json:"withdraw_charges_amount"`
	}](t, w)
	assert.Equal(t, "Jane", tx.ClientName)
	assert.Equal(t, "Northwind", tx.BankName)
	assert.True(t, decimal.NewFromInt(20).Equal(tx.WithdrawChargesAmount), tx.WithdrawChargesAmount.String())

	w = h.do(http.MethodGet, "/api/v1/profiler/profiles/"+profile, nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := dataOf[profileBody](t, w)
	assert.True(t, decimal.NewFromInt(200).Equal(p.TotalWithdrawnAmount))
	assert.True(t, decimal.NewFromInt(800).Equal(p.RemainingBalance))
	assert.Equal(t, int64(1), p.TransactionCount)

	t.Run("amounts are immutable, notes are not", func(t *testing.T) {
		w := h.do(http.MethodPatch, "/api/v1/profiler/transactions/"+tx.ID, map[string]any{"notes": "settled"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := dataOf[struct {
			Notes string `json:"notes"`
		}](t, w)
		assert.Equal(t, "settled", got.Notes)
	})

	t.Run("delete reverts the balance", func(t *testing.T) {
		w := h.do(http.MethodDelete, "/api/v1/profiler/transactions/"+tx.ID, nil)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = h.do(http.MethodGet, "/api/v1/profiler/profiles/"+profile, nil)
		p := dataOf[profileBody](t, w)
		assert.True(t, p.TotalWithdrawnAmount.IsZero())
		assert.True(t, decimal.NewFromInt(1000).Equal(p.RemainingBalance))
	})
}

func TestProfilerTransactionHandler_Idempotency(t *testing.T) {
	h := newHarness(t)
	profile := newProfile(t, h, false)
	body := map[string]any{
		"profile_id":       profile,
		"transaction_type": "deposit",
		"amount":           50,
	}

	h.created("/api/v1/profiler/transactions", body, "Idempotency-Key", "deposit-1")

	w := h.do(http.MethodPost, "/api/v1/profiler/transactions", body, "Idempotency-Key", "deposit-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ERR_DUPLICATE_REQUEST", decode(t, w).Error.Code)

	w = h.do(http.MethodPost, "/api/v1/profiler/transactions", body, "Idempotency-Key", strings.Repeat("k", 129))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// requests without a key are never deduplicated
	h.created("/api/v1/profiler/transactions", body)
	h.created("/api/v1/profiler/transactions", body)

	w = h.do(http.MethodGet, "/api/v1/profiler/transactions?profile_id="+profile, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(3), decode(t, w).Pagination.TotalCount)
}

func TestProfileHandler_MarkDone(t *testing.T) {
	t.Run("done profiles reject transactions", func(t *testing.T) {
		h := newHarness(t)
		profile := newProfile(t, h, false)

		w := h.do(http.MethodPost, "/api/v1/profiler/profiles/"+profile+"/done", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		done := dataOf[struct {
			Profile        profileBody  `json:"profile"`
			CarriedForward *profileBody `json:"carried_forward_profile"`
		}](t, w)
		assert.Equal(t, "done", done.Profile.Status)
		assert.Nil(t, done.CarriedForward)

		w = h.do(http.MethodPost, "/api/v1/profiler/transactions", map[string]any{
			"profile_id":       profile,
			"transaction_type": "deposit",
			"amount":           10,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ERR_PROFILE_DONE", decode(t, w).Error.Code)

		w = h.do(http.MethodPost, "/api/v1/profiler/profiles/"+profile+"/done", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ERR_PROFILE_NOT_ACTIVE", decode(t, w).Error.Code)
	})

	t.Run("carry forward opens a successor", func(t *testing.T) {
		h := newHarness(t)
		profile := newProfile(t, h, true)
		h.created("/api/v1/profiler/transactions", map[string]any{
			"profile_id":       profile,
			"transaction_type": "withdraw",
			"amount":           300,
		})

		w := h.do(http.MethodPost, "/api/v1/profiler/profiles/"+profile+"/done", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		done := dataOf[struct {
			Profile        profileBody  `json:"profile"`
			CarriedForward *profileBody `json:"carried_forward_profile"`
		}](t, w)
		require.NotNil(t, done.CarriedForward)
		assert.Equal(t, "active", done.CarriedForward.Status)
		assert.True(t, decimal.NewFromInt(700).Equal(done.CarriedForward.PrePlanned), done.CarriedForward.PrePlanned.String())
		require.NotNil(t, done.CarriedForward.CarriedFromID)
		assert.Equal(t, profile, *done.CarriedForward.CarriedFromID)

		w = h.do(http.MethodGet, "/api/v1/profiler/profiles?status=active", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, int64(1), decode(t, w).Pagination.TotalCount)
	})

	t.Run("unknown profile", func(t *testing.T) {
		h := newHarness(t)
		w := h.do(http.MethodPost, "/api/v1/profiler/profiles/7c9e6679-7425-40de-944b-e07fc1f90ae7/done", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReportHandler_ProfileSummary(t *testing.T) {
	h := newHarness(t)
	profile := newProfile(t, h, false)
	h.created("/api/v1/profiler/transactions", map[string]any{
		"profile_id": profile, "transaction_type": "withdraw", "amount": 200, "withdraw_charges_percentage": 10,
	})

	w := h.do(http.MethodGet, "/api/v1/reports/profiles", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := dataOf[struct {
		Groups []struct {
			TransactionCount int             `json:"transaction_count"`
			WithdrawCharges  decimal.Decimal `json:"widthdraw_charges"`
			IsOnlyWithdraw   bool            `json:"isOnlyWithdraw"`
		} `json:"groups"`
		Totals struct {
			GroupCount int `json:"group_count"`
		} `json:"totals"`
	}](t, w)
	require.Len(t, summary.Groups, 1)
	assert.Equal(t, 1, summary.Groups[0].TransactionCount)
	assert.True(t, summary.Groups[0].IsOnlyWithdraw)
	assert.True(t, decimal.NewFromInt(20).Equal(summary.Groups[0].WithdrawCharges))
	assert.Equal(t, 1, summary.Totals.GroupCount)

	w = h.do(http.MethodGet, "/api/v1/reports/profiles?sort_by=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
